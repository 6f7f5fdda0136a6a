package repository

import (
	"fmt"

	"roboteamup/internal/models"
	"roboteamup/internal/store"
)

// VisionRepository handles row-store operations for vision texts
type VisionRepository struct {
	store *store.Store
}

// NewVisionRepository creates a new vision repository
func NewVisionRepository(s *store.Store) *VisionRepository {
	return &VisionRepository{store: s}
}

// GetVision retrieves a student's vision text in one class, nil when unset
func (r *VisionRepository) GetVision(userID, classID string) (*models.VisionText, error) {
	recs, err := r.store.ReadAll(store.TableVisionTexts)
	if err != nil {
		return nil, fmt.Errorf("failed to read visions: %w", err)
	}
	for _, rec := range recs {
		v := models.VisionTextFromRecord(rec)
		if v.UserID == userID && v.ClassID == classID {
			return &v, nil
		}
	}
	return nil, nil
}

// GetVisionsByClass retrieves every vision text in a class
func (r *VisionRepository) GetVisionsByClass(classID string) ([]models.VisionText, error) {
	recs, err := r.store.ReadAll(store.TableVisionTexts)
	if err != nil {
		return nil, fmt.Errorf("failed to read visions: %w", err)
	}
	var out []models.VisionText
	for _, rec := range recs {
		v := models.VisionTextFromRecord(rec)
		if v.ClassID == classID {
			out = append(out, v)
		}
	}
	return out, nil
}

// UpsertVision writes a student's vision text keyed by (userId, classId)
func (r *VisionRepository) UpsertVision(v models.VisionText) error {
	if err := r.store.UpsertOne(store.TableVisionTexts, []string{"userId", "classId"}, v.Record()); err != nil {
		return fmt.Errorf("failed to upsert vision: %w", err)
	}
	return nil
}

// DeleteVisionsByUser removes all of a user's vision texts
func (r *VisionRepository) DeleteVisionsByUser(userID string) (int, error) {
	n, err := r.store.DeleteWhere(store.TableVisionTexts, func(rec store.Record) bool {
		return rec["userId"] == userID
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete visions: %w", err)
	}
	return n, nil
}

// DeleteVisionsByClass removes every vision text in a class
func (r *VisionRepository) DeleteVisionsByClass(classID string) (int, error) {
	n, err := r.store.DeleteWhere(store.TableVisionTexts, func(rec store.Record) bool {
		return rec["classId"] == classID
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete visions: %w", err)
	}
	return n, nil
}
