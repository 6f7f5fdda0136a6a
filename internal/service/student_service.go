package service

import (
	"roboteamup/internal/models"
	"roboteamup/internal/repository"
)

// StudentBootstrap is everything the student client needs to render a
// class view in one call.
type StudentBootstrap struct {
	User             models.User              `json:"user"`
	Classes          []models.Class           `json:"classes"`
	Values           []models.Value           `json:"values"`
	Missions         []models.Mission         `json:"missions"`
	AllowedMissions  []string                 `json:"allowedMissionIds,omitempty"`
	ValueSelections  []models.ValueSelection  `json:"valueSelections"`
	MissionSelection *models.MissionSelection `json:"missionSelection,omitempty"`
	Vision           *models.VisionText       `json:"vision,omitempty"`
	Peers            []string                 `json:"peers,omitempty"`
}

// StudentService assembles the student-facing read surface and handles
// join-code redemption.
type StudentService struct {
	users       *repository.UserRepository
	classes     *repository.ClassRepository
	enrollments *repository.EnrollmentRepository
	catalog     *repository.CatalogRepository
	selections  *repository.SelectionRepository
	visions     *repository.VisionRepository
	joinCodes   *repository.JoinCodeRepository
}

// NewStudentService creates a new student service
func NewStudentService(users *repository.UserRepository, classes *repository.ClassRepository, enrollments *repository.EnrollmentRepository, catalog *repository.CatalogRepository, selections *repository.SelectionRepository, visions *repository.VisionRepository, joinCodes *repository.JoinCodeRepository) *StudentService {
	return &StudentService{
		users:       users,
		classes:     classes,
		enrollments: enrollments,
		catalog:     catalog,
		selections:  selections,
		visions:     visions,
		joinCodes:   joinCodes,
	}
}

// MyClasses returns the classes the user is enrolled in
func (s *StudentService) MyClasses(userID string) ([]models.Class, error) {
	enrollments, err := s.enrollments.GetEnrollmentsByUser(userID)
	if err != nil {
		return nil, err
	}
	classes, err := s.classes.GetAllClasses()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Class, len(classes))
	for _, c := range classes {
		byID[c.ID] = c
	}
	var out []models.Class
	for _, e := range enrollments {
		if c, ok := byID[e.ClassID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Bootstrap gathers the active catalog, the student's enrollments and
// their stored state for one class into a single payload.
func (s *StudentService) Bootstrap(user *models.User, classID string) (*StudentBootstrap, error) {
	classes, err := s.MyClasses(user.ID)
	if err != nil {
		return nil, err
	}
	cat, err := s.catalog.ActiveCatalog()
	if err != nil {
		return nil, err
	}

	out := &StudentBootstrap{
		User:     *user,
		Classes:  classes,
		Values:   cat.Values,
		Missions: cat.Missions,
	}

	if classID == "" {
		return out, nil
	}

	allowed, err := s.catalog.GetClassMissions(classID)
	if err != nil {
		return nil, err
	}
	for _, cm := range allowed {
		out.AllowedMissions = append(out.AllowedMissions, cm.MissionID)
	}

	out.ValueSelections, err = s.selections.GetValueSelections(user.ID, classID)
	if err != nil {
		return nil, err
	}
	out.MissionSelection, err = s.selections.GetMissionSelection(user.ID, classID)
	if err != nil {
		return nil, err
	}
	out.Vision, err = s.visions.GetVision(user.ID, classID)
	if err != nil {
		return nil, err
	}

	classmates, err := s.enrollments.GetEnrollmentsByClass(classID)
	if err != nil {
		return nil, err
	}
	for _, e := range classmates {
		if e.UserID == user.ID || e.RoleInClass != models.ClassRoleStudent {
			continue
		}
		peer, err := s.users.GetUserByID(e.UserID)
		if err != nil {
			return nil, err
		}
		if peer != nil {
			out.Peers = append(out.Peers, peer.DisplayName)
		}
	}
	return out, nil
}

// EnrollWithCode redeems a join code and enrolls the student into the
// code's class. Closed, expired or exhausted codes are rejected; being
// already enrolled redeems nothing but is not an error.
func (s *StudentService) EnrollWithCode(user *models.User, code string) (*models.Class, error) {
	jc, err := s.joinCodes.GetJoinCodeByCode(code)
	if err != nil {
		return nil, err
	}
	if jc == nil || !jc.Active || jc.IsExpired(timeNow()) || jc.AtCapacity() {
		return nil, ErrCodeInvalid
	}

	class, err := s.classes.GetClassByID(jc.ClassID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrNotFound
	}

	already, err := s.enrollments.IsEnrolled(user.ID, jc.ClassID)
	if err != nil {
		return nil, err
	}
	if already {
		return class, nil
	}

	e := models.Enrollment{
		ID:          newID(),
		UserID:      user.ID,
		ClassID:     jc.ClassID,
		RoleInClass: models.ClassRoleStudent,
	}
	if err := s.enrollments.CreateEnrollment(e); err != nil {
		return nil, err
	}
	if err := s.joinCodes.IncrementUses(*jc); err != nil {
		return nil, err
	}
	return class, nil
}
