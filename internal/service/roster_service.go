package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"roboteamup/internal/models"
	"roboteamup/internal/repository"
	"roboteamup/internal/roster"
)

// SyncReport summarises one roster sync run for a class
type SyncReport struct {
	ClassID          string `json:"classId"`
	CourseID         string `json:"courseId"`
	UsersCreated     int    `json:"usersCreated"`
	RolesElevated    int    `json:"rolesElevated"`
	EnrollmentsAdded int    `json:"enrollmentsAdded"`
	StudentsRemoved  int    `json:"studentsRemoved"`
	Skipped          int    `json:"skipped"`
}

// RosterService keeps class enrollment in step with the external
// course roster.
type RosterService struct {
	provider    roster.Provider
	users       *repository.UserRepository
	classes     *repository.ClassRepository
	enrollments *repository.EnrollmentRepository
	settings    *repository.SyncSettingsRepository
}

// NewRosterService creates a new roster service
func NewRosterService(provider roster.Provider, users *repository.UserRepository, classes *repository.ClassRepository, enrollments *repository.EnrollmentRepository, settings *repository.SyncSettingsRepository) *RosterService {
	return &RosterService{
		provider:    provider,
		users:       users,
		classes:     classes,
		enrollments: enrollments,
		settings:    settings,
	}
}

func (s *RosterService) requireProvider() error {
	if s.provider == nil {
		return fmt.Errorf("%w: roster provider not configured", ErrUpstream)
	}
	return nil
}

// AvailableCourses lists the roster courses the connected account can see
func (s *RosterService) AvailableCourses(ctx context.Context) ([]roster.Course, error) {
	if err := s.requireProvider(); err != nil {
		return nil, err
	}
	courses, err := s.provider.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return courses, nil
}

// PreviewRoster fetches a course roster without touching local data
func (s *RosterService) PreviewRoster(ctx context.Context, courseID string) ([]roster.Member, []roster.Member, error) {
	if err := s.requireProvider(); err != nil {
		return nil, nil, err
	}
	students, err := s.provider.ListStudents(ctx, courseID)
	if err != nil {
		return nil, nil, s.wrapProviderErr(err)
	}
	teachers, err := s.provider.ListTeachers(ctx, courseID)
	if err != nil {
		return nil, nil, s.wrapProviderErr(err)
	}
	return students, teachers, nil
}

// ImportCourse creates a local class linked to a roster course and runs
// an initial sync. Importing an already-linked course is rejected.
func (s *RosterService) ImportCourse(ctx context.Context, courseID, classType string) (*models.Class, *SyncReport, error) {
	if err := s.requireProvider(); err != nil {
		return nil, nil, err
	}
	course, err := s.provider.GetCourse(ctx, courseID)
	if err != nil {
		return nil, nil, s.wrapProviderErr(err)
	}
	existing, err := s.classes.GetClassByCourseID(course.ID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrAlreadyEnrolled
	}

	class := models.Class{
		ID:                newID(),
		Name:              course.Name,
		Type:              classType,
		ClassroomCourseID: course.ID,
	}
	if err := s.classes.CreateClass(class); err != nil {
		return nil, nil, err
	}
	if err := s.settings.Upsert(models.SyncSettings{
		ID:                newID(),
		ClassID:           class.ID,
		ClassroomCourseID: course.ID,
		ClassName:         course.Name,
		SyncEnabled:       true,
	}); err != nil {
		return nil, nil, err
	}

	report, err := s.SyncClass(ctx, class.ID, false)
	if err != nil {
		return &class, nil, err
	}
	return &class, report, nil
}

// SyncClass pulls the linked course roster and reconciles local users
// and enrollments against it. removeMissing additionally drops student
// enrollments whose user is no longer on the course's student list;
// teachers are never auto-removed.
func (s *RosterService) SyncClass(ctx context.Context, classID string, removeMissing bool) (*SyncReport, error) {
	if err := s.requireProvider(); err != nil {
		return nil, err
	}
	class, err := s.classes.GetClassByID(classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrNotFound
	}
	if class.ClassroomCourseID == "" {
		return nil, fmt.Errorf("%w: class %s is not linked to a course", ErrBadPayload, classID)
	}

	students, err := s.provider.ListStudents(ctx, class.ClassroomCourseID)
	if err != nil {
		return nil, s.wrapProviderErr(err)
	}
	teachers, err := s.provider.ListTeachers(ctx, class.ClassroomCourseID)
	if err != nil {
		return nil, s.wrapProviderErr(err)
	}

	report := &SyncReport{ClassID: classID, CourseID: class.ClassroomCourseID}

	existing, err := s.enrollments.GetEnrollmentsByClass(classID)
	if err != nil {
		return nil, err
	}
	// Enrollments are tracked per (user, class role): a user promoted
	// from the student list to the teacher list gets a teacher
	// enrollment even though a student one already exists.
	enrolled := make(map[string]map[models.ClassRole]bool, len(existing))
	for _, e := range existing {
		if enrolled[e.UserID] == nil {
			enrolled[e.UserID] = make(map[models.ClassRole]bool)
		}
		enrolled[e.UserID][e.RoleInClass] = true
	}

	onStudentList := make(map[string]bool)
	var newEnrollments []models.Enrollment

	sync := func(members []roster.Member, classRole models.ClassRole, userRole models.Role) error {
		for _, m := range members {
			user, err := s.resolveMember(m, userRole, report)
			if err != nil {
				return err
			}
			if user == nil {
				continue
			}
			if classRole == models.ClassRoleStudent {
				onStudentList[user.ID] = true
			}

			// Teachers on the roster elevate STUDENT accounts; roles
			// are never lowered by a sync.
			if userRole == models.RoleTeacher && user.Role == models.RoleStudent {
				if _, err := s.users.UpdateUser(user.ID, map[string]string{"role": string(models.RoleTeacher)}); err != nil {
					return err
				}
				report.RolesElevated++
			}

			if !enrolled[user.ID][classRole] {
				newEnrollments = append(newEnrollments, models.Enrollment{
					ID:          newID(),
					UserID:      user.ID,
					ClassID:     classID,
					RoleInClass: classRole,
				})
				if enrolled[user.ID] == nil {
					enrolled[user.ID] = make(map[models.ClassRole]bool)
				}
				enrolled[user.ID][classRole] = true
			}
		}
		return nil
	}

	if err := sync(teachers, models.ClassRoleTeacher, models.RoleTeacher); err != nil {
		return nil, err
	}
	if err := sync(students, models.ClassRoleStudent, models.RoleStudent); err != nil {
		return nil, err
	}

	if len(newEnrollments) > 0 {
		n, err := s.enrollments.CreateEnrollments(newEnrollments)
		report.EnrollmentsAdded = n
		if err != nil {
			return report, err
		}
	}

	if removeMissing {
		for _, e := range existing {
			if e.RoleInClass != models.ClassRoleStudent || onStudentList[e.UserID] {
				continue
			}
			if _, err := s.enrollments.DeleteEnrollment(e.ID); err != nil {
				return report, err
			}
			report.StudentsRemoved++
		}
	}

	log.Printf("Roster sync for class %s: +%d users, +%d enrollments, -%d students, %d skipped",
		classID, report.UsersCreated, report.EnrollmentsAdded, report.StudentsRemoved, report.Skipped)
	return report, nil
}

// SyncAllEnabled runs a sync for every class whose settings enable it.
// Failures are logged per class and do not stop the run.
func (s *RosterService) SyncAllEnabled(ctx context.Context) ([]SyncReport, error) {
	settings, err := s.settings.GetAllSettings()
	if err != nil {
		return nil, err
	}
	var reports []SyncReport
	for _, st := range settings {
		if !st.SyncEnabled {
			continue
		}
		report, err := s.SyncClass(ctx, st.ClassID, st.RemoveMissingStudents)
		if err != nil {
			log.Printf("Roster sync failed for class %s: %v", st.ClassID, err)
			continue
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

// GetSyncSettings returns a class's sync settings, defaulting a row for
// linked classes that have none yet.
func (s *RosterService) GetSyncSettings(classID string) (*models.SyncSettings, error) {
	st, err := s.settings.GetByClass(classID)
	if err != nil {
		return nil, err
	}
	if st != nil {
		return st, nil
	}
	class, err := s.classes.GetClassByID(classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrNotFound
	}
	fresh := models.SyncSettings{
		ID:                newID(),
		ClassID:           class.ID,
		ClassroomCourseID: class.ClassroomCourseID,
		ClassName:         class.Name,
	}
	if err := s.settings.Upsert(fresh); err != nil {
		return nil, err
	}
	return &fresh, nil
}

// UpdateSyncSettings stores the sync toggles for a class
func (s *RosterService) UpdateSyncSettings(classID string, syncEnabled, removeMissing bool) (*models.SyncSettings, error) {
	st, err := s.GetSyncSettings(classID)
	if err != nil {
		return nil, err
	}
	st.SyncEnabled = syncEnabled
	st.RemoveMissingStudents = removeMissing
	if err := s.settings.Upsert(*st); err != nil {
		return nil, err
	}
	return st, nil
}

// resolveMember finds or creates the local user for a roster member.
// Members with neither email nor external id cannot be matched and are
// counted as skipped.
func (s *RosterService) resolveMember(m roster.Member, role models.Role, report *SyncReport) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(m.Email))
	if email == "" && m.GoogleID == "" {
		report.Skipped++
		return nil, nil
	}

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.users.GetUserByGoogleID(m.GoogleID)
		if err != nil {
			return nil, err
		}
	}
	if user != nil {
		return user, nil
	}

	created := models.User{
		ID:          newID(),
		Email:       email,
		DisplayName: m.FullName,
		Role:        role,
		GoogleID:    m.GoogleID,
	}
	if err := s.users.CreateUser(created); err != nil {
		return nil, err
	}
	report.UsersCreated++
	return &created, nil
}

func (s *RosterService) wrapProviderErr(err error) error {
	if errors.Is(err, roster.ErrCourseNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
