package service

import (
	"context"
	"crypto/rand"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"roboteamup/internal/models"
	"roboteamup/internal/repository"
	"roboteamup/internal/store"
	"roboteamup/internal/utils"
)

// joinCodeAlphabet omits characters that read ambiguously on a
// projector (0/O, 1/I).
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const joinCodeLength = 6

// BulkImportResult summarises a CSV user import
type BulkImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// AdminService covers the teacher/admin management surface: users,
// classes, catalogs, enrollments and join codes.
type AdminService struct {
	users       *repository.UserRepository
	classes     *repository.ClassRepository
	enrollments *repository.EnrollmentRepository
	catalog     *repository.CatalogRepository
	selections  *repository.SelectionRepository
	visions     *repository.VisionRepository
	teams       *repository.TeamRepository
	joinCodes   *repository.JoinCodeRepository
	settings    *repository.SyncSettingsRepository
	sessions    *repository.SessionRepository
	email       *EmailService
}

// NewAdminService creates a new admin service
func NewAdminService(
	users *repository.UserRepository,
	classes *repository.ClassRepository,
	enrollments *repository.EnrollmentRepository,
	catalog *repository.CatalogRepository,
	selections *repository.SelectionRepository,
	visions *repository.VisionRepository,
	teams *repository.TeamRepository,
	joinCodes *repository.JoinCodeRepository,
	settings *repository.SyncSettingsRepository,
	sessions *repository.SessionRepository,
	email *EmailService,
) *AdminService {
	return &AdminService{
		users:       users,
		classes:     classes,
		enrollments: enrollments,
		catalog:     catalog,
		selections:  selections,
		visions:     visions,
		teams:       teams,
		joinCodes:   joinCodes,
		settings:    settings,
		sessions:    sessions,
		email:       email,
	}
}

// ListUsers returns every registered user
func (s *AdminService) ListUsers() ([]models.User, error) {
	return s.users.GetAllUsers()
}

// AddUser registers a user. Emails are stored lowercase and must be
// unique.
func (s *AdminService) AddUser(email, displayName string, role models.Role, gradeLevel string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := utils.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if err := utils.ValidateName(displayName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	switch role {
	case models.RoleStudent, models.RoleTeacher, models.RoleAdmin:
	case "":
		role = models.RoleStudent
	default:
		return nil, ErrBadPayload
	}

	existing, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUser
	}

	user := models.User{
		ID:          newID(),
		Email:       email,
		DisplayName: displayName,
		Role:        role,
		GradeLevel:  gradeLevel,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}
	return &user, nil
}

// BulkImportUsers reads users from CSV rows of
// email,displayName,role,gradeLevel. Rows with a known email are
// skipped, malformed rows are reported but do not stop the import.
func (s *AdminService) BulkImportUsers(r io.Reader) (*BulkImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	existing, err := s.users.GetAllUsers()
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, u := range existing {
		known[strings.ToLower(u.Email)] = true
	}

	result := &BulkImportResult{}
	var created []models.User
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if len(row) < 2 {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: need at least email and name", line))
			continue
		}

		email := strings.ToLower(strings.TrimSpace(row[0]))
		name := strings.TrimSpace(row[1])
		if utils.ValidateEmail(email) != nil || name == "" {
			// Tolerate a header row on the first line.
			if line == 1 {
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: invalid email or name", line))
			continue
		}
		if known[email] {
			result.Skipped++
			continue
		}

		role := models.RoleStudent
		if len(row) > 2 {
			switch models.Role(strings.ToUpper(strings.TrimSpace(row[2]))) {
			case models.RoleTeacher:
				role = models.RoleTeacher
			case models.RoleAdmin:
				role = models.RoleAdmin
			}
		}
		grade := ""
		if len(row) > 3 {
			grade = strings.TrimSpace(row[3])
		}

		known[email] = true
		created = append(created, models.User{
			ID:          newID(),
			Email:       email,
			DisplayName: name,
			Role:        role,
			GradeLevel:  grade,
		})
	}

	if len(created) > 0 {
		n, err := s.users.CreateUsers(created)
		result.Created = n
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// UpdateUser patches a user. An email change must not collide with
// another account.
func (s *AdminService) UpdateUser(id string, patch store.Record) (*models.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if email, ok := patch["email"]; ok {
		email = strings.ToLower(strings.TrimSpace(email))
		if err := utils.ValidateEmail(email); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		taken, err := s.users.EmailInUseByOther(id, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateUser
		}
		patch["email"] = email
	}
	if role, ok := patch["role"]; ok {
		switch models.Role(role) {
		case models.RoleStudent, models.RoleTeacher, models.RoleAdmin:
		default:
			return nil, ErrBadPayload
		}
	}

	if _, err := s.users.UpdateUser(id, patch); err != nil {
		return nil, err
	}
	return s.users.GetUserByID(id)
}

// DeleteUser removes a user and everything that references them:
// enrollments, selections, visions, team memberships and sessions.
func (s *AdminService) DeleteUser(id string) error {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if _, err := s.enrollments.DeleteByUser(id); err != nil {
		return err
	}
	if _, err := s.selections.DeleteSelectionsByUser(id); err != nil {
		return err
	}
	if _, err := s.visions.DeleteVisionsByUser(id); err != nil {
		return err
	}
	if _, err := s.teams.DeleteMembershipsByUser(id); err != nil {
		return err
	}
	if _, err := s.sessions.DeleteByUser(id); err != nil {
		return err
	}
	if _, err := s.users.DeleteUser(id); err != nil {
		return err
	}
	return nil
}

// ListClasses returns every class
func (s *AdminService) ListClasses() ([]models.Class, error) {
	return s.classes.GetAllClasses()
}

// AddClass creates a class
func (s *AdminService) AddClass(name, classType string) (*models.Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBadPayload
	}
	class := models.Class{
		ID:   newID(),
		Name: name,
		Type: classType,
	}
	if err := s.classes.CreateClass(class); err != nil {
		return nil, err
	}
	return &class, nil
}

// UpdateClass patches a class
func (s *AdminService) UpdateClass(id string, patch store.Record) (*models.Class, error) {
	ok, err := s.classes.UpdateClass(id, patch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.classes.GetClassByID(id)
}

// DeleteClass removes a class and everything scoped to it: enrollments,
// mission allow-list, teams, selections, visions, join codes and sync
// settings.
func (s *AdminService) DeleteClass(id string) error {
	class, err := s.classes.GetClassByID(id)
	if err != nil {
		return err
	}
	if class == nil {
		return ErrNotFound
	}

	if _, err := s.enrollments.DeleteByClass(id); err != nil {
		return err
	}
	if _, err := s.catalog.DeleteClassMissionsByClass(id); err != nil {
		return err
	}
	if _, err := s.teams.DeleteTeamsByClass(id); err != nil {
		return err
	}
	if _, err := s.selections.DeleteSelectionsByClass(id); err != nil {
		return err
	}
	if _, err := s.visions.DeleteVisionsByClass(id); err != nil {
		return err
	}
	if _, err := s.joinCodes.DeleteByClass(id); err != nil {
		return err
	}
	if _, err := s.settings.DeleteByClass(id); err != nil {
		return err
	}
	if _, err := s.classes.DeleteClass(id); err != nil {
		return err
	}
	return nil
}

// EnrollByEmail enrolls a registered user into a class by email.
// Enrolling twice is rejected.
func (s *AdminService) EnrollByEmail(email, classID string, role models.ClassRole) (*models.Enrollment, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnregisteredUser
	}
	class, err := s.classes.GetClassByID(classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrNotFound
	}

	already, err := s.enrollments.IsEnrolled(user.ID, classID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrAlreadyEnrolled
	}

	if role == "" {
		role = models.ClassRoleStudent
	}
	e := models.Enrollment{
		ID:          newID(),
		UserID:      user.ID,
		ClassID:     classID,
		RoleInClass: role,
	}
	if err := s.enrollments.CreateEnrollment(e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Unenroll removes one enrollment row
func (s *AdminService) Unenroll(enrollmentID string) error {
	ok, err := s.enrollments.DeleteEnrollment(enrollmentID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// ClassRoster returns the class's enrollments joined with user details
func (s *AdminService) ClassRoster(classID string) ([]models.Enrollment, map[string]models.User, error) {
	enrollments, err := s.enrollments.GetEnrollmentsByClass(classID)
	if err != nil {
		return nil, nil, err
	}
	users, err := s.users.GetAllUsers()
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return enrollments, byID, nil
}

// GenerateJoinCode issues a join code for a class. maxUses <= 0 means
// unlimited.
func (s *AdminService) GenerateJoinCode(classID string, ttl time.Duration, maxUses int) (*models.JoinCode, error) {
	class, err := s.classes.GetClassByID(classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrNotFound
	}

	code, err := newJoinCode()
	if err != nil {
		return nil, err
	}

	jc := models.JoinCode{
		ID:      newID(),
		ClassID: classID,
		Code:    code,
		MaxUses: maxUses,
		Active:  true,
	}
	if ttl > 0 {
		jc.ExpiresAt = time.Now().Add(ttl)
	}
	if err := s.joinCodes.CreateJoinCode(jc); err != nil {
		return nil, err
	}
	return &jc, nil
}

// newJoinCode draws a code from the unambiguous alphabet using the
// crypto random source.
func newJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate join code: %w", err)
	}
	code := make([]byte, joinCodeLength)
	for i, b := range buf {
		code[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(code), nil
}

// ListJoinCodes returns every join code issued for a class
func (s *AdminService) ListJoinCodes(classID string) ([]models.JoinCode, error) {
	return s.joinCodes.GetJoinCodesByClass(classID)
}

// CloseJoinCode deactivates a join code
func (s *AdminService) CloseJoinCode(id string) error {
	ok, err := s.joinCodes.Deactivate(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// InviteByEmail issues a join code and emails it to the student
func (s *AdminService) InviteByEmail(ctx context.Context, classID, email, name string, ttl time.Duration) (*models.JoinCode, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	class, err := s.classes.GetClassByID(classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrNotFound
	}
	jc, err := s.GenerateJoinCode(classID, ttl, 1)
	if err != nil {
		return nil, err
	}
	if err := s.email.SendJoinCodeEmail(ctx, email, name, class.Name, jc.Code); err != nil {
		log.Printf("Warning: join code created but invitation email failed: %v", err)
	}
	return jc, nil
}

// ListValues returns the full value catalog
func (s *AdminService) ListValues() ([]models.Value, error) {
	return s.catalog.GetAllValues()
}

// AddValue creates a catalog value, active by default
func (s *AdminService) AddValue(slug, label string) (*models.Value, error) {
	slug = strings.TrimSpace(slug)
	label = strings.TrimSpace(label)
	if slug == "" || label == "" {
		return nil, ErrBadPayload
	}
	v := models.Value{
		ID:     newID(),
		Slug:   slug,
		Label:  label,
		Active: true,
	}
	if err := s.catalog.CreateValue(v); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateValue patches a catalog value
func (s *AdminService) UpdateValue(id string, patch store.Record) error {
	ok, err := s.catalog.UpdateValue(id, patch)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// ListMissions returns the full mission catalog
func (s *AdminService) ListMissions() ([]models.Mission, error) {
	return s.catalog.GetAllMissions()
}

// AddMission creates a mission, active by default
func (s *AdminService) AddMission(slug, label string) (*models.Mission, error) {
	slug = strings.TrimSpace(slug)
	label = strings.TrimSpace(label)
	if slug == "" || label == "" {
		return nil, ErrBadPayload
	}
	m := models.Mission{
		ID:     newID(),
		Slug:   slug,
		Label:  label,
		Active: true,
	}
	if err := s.catalog.CreateMission(m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMission patches a mission
func (s *AdminService) UpdateMission(id string, patch store.Record) error {
	ok, err := s.catalog.UpdateMission(id, patch)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// SetClassMissions replaces a class's mission allow-list. Every id must
// be a known mission.
func (s *AdminService) SetClassMissions(classID string, missionIDs []string) error {
	class, err := s.classes.GetClassByID(classID)
	if err != nil {
		return err
	}
	if class == nil {
		return ErrNotFound
	}
	missions, err := s.catalog.GetAllMissions()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(missions))
	for _, m := range missions {
		known[m.ID] = true
	}
	for _, id := range missionIDs {
		if !known[id] {
			return ErrUnknownValue
		}
	}
	return s.catalog.SetClassMissions(classID, missionIDs)
}

// Bootstrap seeds the very first admin account. It only works while no
// admin exists, so the endpoint is safe to leave mounted.
func (s *AdminService) Bootstrap(email, displayName string) (*models.User, error) {
	users, err := s.users.GetAllUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			return nil, ErrForbidden
		}
	}
	return s.AddUser(email, displayName, models.RoleAdmin, "")
}
