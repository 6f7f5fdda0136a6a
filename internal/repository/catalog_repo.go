package repository

import (
	"fmt"

	"roboteamup/internal/models"
	"roboteamup/internal/store"
)

// CatalogRepository handles row-store operations for the value and
// mission catalogs.
type CatalogRepository struct {
	store *store.Store
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(s *store.Store) *CatalogRepository {
	return &CatalogRepository{store: s}
}

// GetAllValues retrieves every catalog value, active or not
func (r *CatalogRepository) GetAllValues() ([]models.Value, error) {
	recs, err := r.store.ReadAll(store.TableValues)
	if err != nil {
		return nil, fmt.Errorf("failed to read values: %w", err)
	}
	values := make([]models.Value, 0, len(recs))
	for _, rec := range recs {
		values = append(values, models.ValueFromRecord(rec))
	}
	return values, nil
}

// GetAllMissions retrieves every mission, active or not
func (r *CatalogRepository) GetAllMissions() ([]models.Mission, error) {
	recs, err := r.store.ReadAll(store.TableMissions)
	if err != nil {
		return nil, fmt.Errorf("failed to read missions: %w", err)
	}
	missions := make([]models.Mission, 0, len(recs))
	for _, rec := range recs {
		missions = append(missions, models.MissionFromRecord(rec))
	}
	return missions, nil
}

// GetClassMissions retrieves the mission allow-list rows for one class
func (r *CatalogRepository) GetClassMissions(classID string) ([]models.ClassMission, error) {
	recs, err := r.store.ReadAll(store.TableClassMission)
	if err != nil {
		return nil, fmt.Errorf("failed to read class missions: %w", err)
	}
	var out []models.ClassMission
	for _, rec := range recs {
		cm := models.ClassMissionFromRecord(rec)
		if cm.ClassID == classID {
			out = append(out, cm)
		}
	}
	return out, nil
}

// ActiveCatalog builds a point-in-time snapshot of the active values and
// missions. Validation reads the snapshot, not the store, so one request
// sees one consistent catalog.
func (r *CatalogRepository) ActiveCatalog() (models.Catalog, error) {
	values, err := r.GetAllValues()
	if err != nil {
		return models.Catalog{}, err
	}
	missions, err := r.GetAllMissions()
	if err != nil {
		return models.Catalog{}, err
	}
	cat := models.Catalog{}
	for _, v := range values {
		if v.Active {
			cat.Values = append(cat.Values, v)
		}
	}
	for _, m := range missions {
		if m.Active {
			cat.Missions = append(cat.Missions, m)
		}
	}
	return cat, nil
}

// CreateValue appends a new catalog value row
func (r *CatalogRepository) CreateValue(v models.Value) error {
	if err := r.store.Append(store.TableValues, v.Record()); err != nil {
		return fmt.Errorf("failed to create value: %w", err)
	}
	return nil
}

// UpdateValue patches a catalog value by id
func (r *CatalogRepository) UpdateValue(id string, patch store.Record) (bool, error) {
	ok, err := r.store.UpdateByID(store.TableValues, id, patch)
	if err != nil {
		return false, fmt.Errorf("failed to update value: %w", err)
	}
	return ok, nil
}

// CreateMission appends a new mission row
func (r *CatalogRepository) CreateMission(m models.Mission) error {
	if err := r.store.Append(store.TableMissions, m.Record()); err != nil {
		return fmt.Errorf("failed to create mission: %w", err)
	}
	return nil
}

// UpdateMission patches a mission by id
func (r *CatalogRepository) UpdateMission(id string, patch store.Record) (bool, error) {
	ok, err := r.store.UpdateByID(store.TableMissions, id, patch)
	if err != nil {
		return false, fmt.Errorf("failed to update mission: %w", err)
	}
	return ok, nil
}

// SetClassMissions replaces the mission allow-list for a class
func (r *CatalogRepository) SetClassMissions(classID string, missionIDs []string) error {
	if _, err := r.store.DeleteWhere(store.TableClassMission, func(rec store.Record) bool {
		return rec["classId"] == classID
	}); err != nil {
		return fmt.Errorf("failed to clear class missions: %w", err)
	}
	recs := make([]store.Record, len(missionIDs))
	for i, mid := range missionIDs {
		cm := models.ClassMission{ID: newID(), ClassID: classID, MissionID: mid}
		recs[i] = cm.Record()
	}
	if _, err := r.store.AppendMany(store.TableClassMission, recs); err != nil {
		return fmt.Errorf("failed to write class missions: %w", err)
	}
	return nil
}

// DeleteClassMissionsByClass removes every allow-list row for a class
func (r *CatalogRepository) DeleteClassMissionsByClass(classID string) (int, error) {
	n, err := r.store.DeleteWhere(store.TableClassMission, func(rec store.Record) bool {
		return rec["classId"] == classID
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete class missions: %w", err)
	}
	return n, nil
}
