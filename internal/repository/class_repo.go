package repository

import (
	"fmt"

	"roboteamup/internal/models"
	"roboteamup/internal/store"
)

// ClassRepository handles row-store operations for classes
type ClassRepository struct {
	store *store.Store
}

// NewClassRepository creates a new class repository
func NewClassRepository(s *store.Store) *ClassRepository {
	return &ClassRepository{store: s}
}

// GetAllClasses retrieves every class
func (r *ClassRepository) GetAllClasses() ([]models.Class, error) {
	recs, err := r.store.ReadAll(store.TableClasses)
	if err != nil {
		return nil, fmt.Errorf("failed to read classes: %w", err)
	}
	classes := make([]models.Class, 0, len(recs))
	for _, rec := range recs {
		classes = append(classes, models.ClassFromRecord(rec))
	}
	return classes, nil
}

// GetClassByID retrieves a class by id, nil when not found
func (r *ClassRepository) GetClassByID(id string) (*models.Class, error) {
	classes, err := r.GetAllClasses()
	if err != nil {
		return nil, err
	}
	for _, c := range classes {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

// GetClassByCourseID retrieves a class linked to a roster course,
// nil when not found
func (r *ClassRepository) GetClassByCourseID(courseID string) (*models.Class, error) {
	if courseID == "" {
		return nil, nil
	}
	classes, err := r.GetAllClasses()
	if err != nil {
		return nil, err
	}
	for _, c := range classes {
		if c.ClassroomCourseID == courseID {
			return &c, nil
		}
	}
	return nil, nil
}

// CreateClass appends a new class row
func (r *ClassRepository) CreateClass(c models.Class) error {
	if err := r.store.Append(store.TableClasses, c.Record()); err != nil {
		return fmt.Errorf("failed to create class: %w", err)
	}
	return nil
}

// UpdateClass patches selected class fields by id
func (r *ClassRepository) UpdateClass(id string, patch store.Record) (bool, error) {
	ok, err := r.store.UpdateByID(store.TableClasses, id, patch)
	if err != nil {
		return false, fmt.Errorf("failed to update class: %w", err)
	}
	return ok, nil
}

// DeleteClass removes the class row. Cascades are the caller's concern.
func (r *ClassRepository) DeleteClass(id string) (bool, error) {
	ok, err := r.store.DeleteByID(store.TableClasses, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete class: %w", err)
	}
	return ok, nil
}
