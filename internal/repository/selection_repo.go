package repository

import (
	"fmt"

	"roboteamup/internal/models"
	"roboteamup/internal/store"
)

// SelectionRepository handles row-store operations for value and
// mission selections.
type SelectionRepository struct {
	store *store.Store
}

// NewSelectionRepository creates a new selection repository
func NewSelectionRepository(s *store.Store) *SelectionRepository {
	return &SelectionRepository{store: s}
}

// GetValueSelections retrieves a student's value selections in one class
func (r *SelectionRepository) GetValueSelections(userID, classID string) ([]models.ValueSelection, error) {
	recs, err := r.store.ReadAll(store.TableValueSelections)
	if err != nil {
		return nil, fmt.Errorf("failed to read value selections: %w", err)
	}
	var out []models.ValueSelection
	for _, rec := range recs {
		vs := models.ValueSelectionFromRecord(rec)
		if vs.UserID == userID && vs.ClassID == classID {
			out = append(out, vs)
		}
	}
	return out, nil
}

// GetValueSelectionsByClass retrieves every value selection in a class
func (r *SelectionRepository) GetValueSelectionsByClass(classID string) ([]models.ValueSelection, error) {
	recs, err := r.store.ReadAll(store.TableValueSelections)
	if err != nil {
		return nil, fmt.Errorf("failed to read value selections: %w", err)
	}
	var out []models.ValueSelection
	for _, rec := range recs {
		vs := models.ValueSelectionFromRecord(rec)
		if vs.ClassID == classID {
			out = append(out, vs)
		}
	}
	return out, nil
}

// DeleteValueSelectionsWhere removes value selection rows matching the
// predicate and returns the count removed.
func (r *SelectionRepository) DeleteValueSelectionsWhere(match func(models.ValueSelection) bool) (int, error) {
	n, err := r.store.DeleteWhere(store.TableValueSelections, func(rec store.Record) bool {
		return match(models.ValueSelectionFromRecord(rec))
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete value selections: %w", err)
	}
	return n, nil
}

// UpsertValueSelections writes a batch of value selections keyed by
// (userId, classId, valueId), updating rows that already exist.
func (r *SelectionRepository) UpsertValueSelections(sels []models.ValueSelection) (int, error) {
	recs := make([]store.Record, len(sels))
	for i, s := range sels {
		recs[i] = s.Record()
	}
	n, err := r.store.UpsertMany(store.TableValueSelections, []string{"userId", "classId", "valueId"}, recs)
	if err != nil {
		return n, fmt.Errorf("failed to upsert value selections: %w", err)
	}
	return n, nil
}

// GetMissionSelection retrieves a student's mission choice in one class,
// nil when none has been made
func (r *SelectionRepository) GetMissionSelection(userID, classID string) (*models.MissionSelection, error) {
	recs, err := r.store.ReadAll(store.TableMissionSelections)
	if err != nil {
		return nil, fmt.Errorf("failed to read mission selections: %w", err)
	}
	for _, rec := range recs {
		ms := models.MissionSelectionFromRecord(rec)
		if ms.UserID == userID && ms.ClassID == classID {
			return &ms, nil
		}
	}
	return nil, nil
}

// GetMissionSelectionsByClass retrieves every mission choice in a class
func (r *SelectionRepository) GetMissionSelectionsByClass(classID string) ([]models.MissionSelection, error) {
	recs, err := r.store.ReadAll(store.TableMissionSelections)
	if err != nil {
		return nil, fmt.Errorf("failed to read mission selections: %w", err)
	}
	var out []models.MissionSelection
	for _, rec := range recs {
		ms := models.MissionSelectionFromRecord(rec)
		if ms.ClassID == classID {
			out = append(out, ms)
		}
	}
	return out, nil
}

// UpsertMissionSelection writes the student's mission choice keyed by
// (userId, classId), replacing any previous choice.
func (r *SelectionRepository) UpsertMissionSelection(ms models.MissionSelection) error {
	if err := r.store.UpsertOne(store.TableMissionSelections, []string{"userId", "classId"}, ms.Record()); err != nil {
		return fmt.Errorf("failed to upsert mission selection: %w", err)
	}
	return nil
}

// DeleteSelectionsByUser removes all of a user's selections across classes
func (r *SelectionRepository) DeleteSelectionsByUser(userID string) (int, error) {
	total := 0
	n, err := r.store.DeleteWhere(store.TableValueSelections, func(rec store.Record) bool {
		return rec["userId"] == userID
	})
	total += n
	if err != nil {
		return total, fmt.Errorf("failed to delete value selections: %w", err)
	}
	n, err = r.store.DeleteWhere(store.TableMissionSelections, func(rec store.Record) bool {
		return rec["userId"] == userID
	})
	total += n
	if err != nil {
		return total, fmt.Errorf("failed to delete mission selections: %w", err)
	}
	return total, nil
}

// DeleteSelectionsByClass removes every selection made in a class
func (r *SelectionRepository) DeleteSelectionsByClass(classID string) (int, error) {
	total := 0
	n, err := r.store.DeleteWhere(store.TableValueSelections, func(rec store.Record) bool {
		return rec["classId"] == classID
	})
	total += n
	if err != nil {
		return total, fmt.Errorf("failed to delete value selections: %w", err)
	}
	n, err = r.store.DeleteWhere(store.TableMissionSelections, func(rec store.Record) bool {
		return rec["classId"] == classID
	})
	total += n
	if err != nil {
		return total, fmt.Errorf("failed to delete mission selections: %w", err)
	}
	return total, nil
}
