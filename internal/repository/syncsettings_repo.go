package repository

import (
	"fmt"

	"roboteamup/internal/models"
	"roboteamup/internal/store"
)

// SyncSettingsRepository handles row-store operations for per-class
// roster sync settings.
type SyncSettingsRepository struct {
	store *store.Store
}

// NewSyncSettingsRepository creates a new sync settings repository
func NewSyncSettingsRepository(s *store.Store) *SyncSettingsRepository {
	return &SyncSettingsRepository{store: s}
}

// GetAllSettings retrieves every sync settings row
func (r *SyncSettingsRepository) GetAllSettings() ([]models.SyncSettings, error) {
	recs, err := r.store.ReadAll(store.TableSyncSettings)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync settings: %w", err)
	}
	out := make([]models.SyncSettings, 0, len(recs))
	for _, rec := range recs {
		out = append(out, models.SyncSettingsFromRecord(rec))
	}
	return out, nil
}

// GetByClass retrieves the sync settings for one class, nil when unset
func (r *SyncSettingsRepository) GetByClass(classID string) (*models.SyncSettings, error) {
	all, err := r.GetAllSettings()
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.ClassID == classID {
			return &s, nil
		}
	}
	return nil, nil
}

// Upsert writes the settings row keyed by classId
func (r *SyncSettingsRepository) Upsert(s models.SyncSettings) error {
	if err := r.store.UpsertOne(store.TableSyncSettings, []string{"classId"}, s.Record()); err != nil {
		return fmt.Errorf("failed to upsert sync settings: %w", err)
	}
	return nil
}

// DeleteByClass removes the sync settings row for a class
func (r *SyncSettingsRepository) DeleteByClass(classID string) (int, error) {
	n, err := r.store.DeleteWhere(store.TableSyncSettings, func(rec store.Record) bool {
		return rec["classId"] == classID
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete sync settings: %w", err)
	}
	return n, nil
}
