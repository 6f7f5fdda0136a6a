package repository

import (
	"fmt"

	"roboteamup/internal/models"
	"roboteamup/internal/store"
)

// EnrollmentRepository handles row-store operations for enrollments
type EnrollmentRepository struct {
	store *store.Store
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(s *store.Store) *EnrollmentRepository {
	return &EnrollmentRepository{store: s}
}

// GetAllEnrollments retrieves every enrollment
func (r *EnrollmentRepository) GetAllEnrollments() ([]models.Enrollment, error) {
	recs, err := r.store.ReadAll(store.TableEnrollments)
	if err != nil {
		return nil, fmt.Errorf("failed to read enrollments: %w", err)
	}
	enrollments := make([]models.Enrollment, 0, len(recs))
	for _, rec := range recs {
		enrollments = append(enrollments, models.EnrollmentFromRecord(rec))
	}
	return enrollments, nil
}

// GetEnrollmentsByClass retrieves enrollments for one class
func (r *EnrollmentRepository) GetEnrollmentsByClass(classID string) ([]models.Enrollment, error) {
	all, err := r.GetAllEnrollments()
	if err != nil {
		return nil, err
	}
	var out []models.Enrollment
	for _, e := range all {
		if e.ClassID == classID {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetEnrollmentsByUser retrieves enrollments for one user
func (r *EnrollmentRepository) GetEnrollmentsByUser(userID string) ([]models.Enrollment, error) {
	all, err := r.GetAllEnrollments()
	if err != nil {
		return nil, err
	}
	var out []models.Enrollment
	for _, e := range all {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// IsEnrolled reports whether the user has any enrollment in the class
func (r *EnrollmentRepository) IsEnrolled(userID, classID string) (bool, error) {
	all, err := r.GetAllEnrollments()
	if err != nil {
		return false, err
	}
	for _, e := range all {
		if e.UserID == userID && e.ClassID == classID {
			return true, nil
		}
	}
	return false, nil
}

// CreateEnrollment appends a new enrollment row
func (r *EnrollmentRepository) CreateEnrollment(e models.Enrollment) error {
	if err := r.store.Append(store.TableEnrollments, e.Record()); err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

// CreateEnrollments appends a batch of enrollment rows in one write
func (r *EnrollmentRepository) CreateEnrollments(es []models.Enrollment) (int, error) {
	recs := make([]store.Record, len(es))
	for i, e := range es {
		recs[i] = e.Record()
	}
	n, err := r.store.AppendMany(store.TableEnrollments, recs)
	if err != nil {
		return n, fmt.Errorf("failed to create enrollments: %w", err)
	}
	return n, nil
}

// DeleteEnrollment removes one enrollment row by id
func (r *EnrollmentRepository) DeleteEnrollment(id string) (bool, error) {
	ok, err := r.store.DeleteByID(store.TableEnrollments, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete enrollment: %w", err)
	}
	return ok, nil
}

// DeleteByUser removes every enrollment row for a user
func (r *EnrollmentRepository) DeleteByUser(userID string) (int, error) {
	n, err := r.store.DeleteWhere(store.TableEnrollments, func(rec store.Record) bool {
		return rec["userId"] == userID
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete enrollments: %w", err)
	}
	return n, nil
}

// DeleteByClass removes every enrollment row for a class
func (r *EnrollmentRepository) DeleteByClass(classID string) (int, error) {
	n, err := r.store.DeleteWhere(store.TableEnrollments, func(rec store.Record) bool {
		return rec["classId"] == classID
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete enrollments: %w", err)
	}
	return n, nil
}
