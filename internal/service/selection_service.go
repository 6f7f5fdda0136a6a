package service

import (
	"strings"

	"roboteamup/internal/models"
	"roboteamup/internal/repository"
)

const (
	// MaxValueSelections is the most values one student may pick per class
	MaxValueSelections = 3
	// CoinBudget is the total coin weight a student may spread across
	// their picks
	CoinBudget = 5
	// MaxCoinWeight is the largest weight one pick may carry
	MaxCoinWeight = 5
)

// ValuePick is one entry of a student's value submission
type ValuePick struct {
	ValueID    string `json:"valueId"`
	CoinWeight int    `json:"coinWeight"`
}

// SelectionService validates and stores student value and mission
// selections.
type SelectionService struct {
	selections *repository.SelectionRepository
	catalog    *repository.CatalogRepository
}

// NewSelectionService creates a new selection service
func NewSelectionService(selections *repository.SelectionRepository, catalog *repository.CatalogRepository) *SelectionService {
	return &SelectionService{selections: selections, catalog: catalog}
}

// SaveValueSelections validates a full submission and replaces the
// student's stored picks for the class. The submission is all-or-nothing:
// any invalid entry rejects the whole batch and the stored rows stay
// untouched.
func (s *SelectionService) SaveValueSelections(userID, classID string, picks []ValuePick) ([]models.ValueSelection, error) {
	cat, err := s.catalog.ActiveCatalog()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(picks))
	total := 0
	cleaned := make([]ValuePick, 0, len(picks))
	for _, p := range picks {
		p.ValueID = strings.TrimSpace(p.ValueID)
		if p.ValueID == "" {
			return nil, ErrBadPayload
		}
		if _, ok := cat.ValueByID(p.ValueID); !ok {
			return nil, ErrUnknownValue
		}
		if seen[p.ValueID] {
			return nil, ErrDuplicateValue
		}
		seen[p.ValueID] = true

		if p.CoinWeight < 0 {
			p.CoinWeight = 0
		}
		if p.CoinWeight > MaxCoinWeight {
			p.CoinWeight = MaxCoinWeight
		}
		total += p.CoinWeight
		cleaned = append(cleaned, p)
	}

	if len(cleaned) > MaxValueSelections {
		return nil, ErrTooManySelections
	}
	if total > CoinBudget {
		return nil, ErrCoinBudgetExceeded
	}

	// Drop stored picks the new submission no longer contains, then
	// upsert the rest keyed by (userId, classId, valueId).
	if _, err := s.selections.DeleteValueSelectionsWhere(func(vs models.ValueSelection) bool {
		return vs.UserID == userID && vs.ClassID == classID && !seen[vs.ValueID]
	}); err != nil {
		return nil, err
	}

	existing, err := s.selections.GetValueSelections(userID, classID)
	if err != nil {
		return nil, err
	}
	existingIDs := make(map[string]string, len(existing))
	for _, vs := range existing {
		existingIDs[vs.ValueID] = vs.ID
	}

	rows := make([]models.ValueSelection, 0, len(cleaned))
	for _, p := range cleaned {
		id := existingIDs[p.ValueID]
		if id == "" {
			id = newID()
		}
		rows = append(rows, models.ValueSelection{
			ID:         id,
			UserID:     userID,
			ClassID:    classID,
			ValueID:    p.ValueID,
			CoinWeight: p.CoinWeight,
		})
	}
	if _, err := s.selections.UpsertValueSelections(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetValueSelections returns the student's stored picks for a class
func (s *SelectionService) GetValueSelections(userID, classID string) ([]models.ValueSelection, error) {
	return s.selections.GetValueSelections(userID, classID)
}

// SelectMission stores the student's mission choice, replacing any
// earlier one. The mission must be active and, when the class carries an
// allow-list, on it.
func (s *SelectionService) SelectMission(userID, classID, missionID string) (*models.MissionSelection, error) {
	missionID = strings.TrimSpace(missionID)
	if missionID == "" {
		return nil, ErrBadPayload
	}

	cat, err := s.catalog.ActiveCatalog()
	if err != nil {
		return nil, err
	}
	var active bool
	for _, m := range cat.Missions {
		if m.ID == missionID {
			active = true
			break
		}
	}
	if !active {
		return nil, ErrUnknownValue
	}

	// The class allow-list is authoritative: a mission nobody added to
	// the class cannot be picked even while globally active.
	allowed, err := s.catalog.GetClassMissions(classID)
	if err != nil {
		return nil, err
	}
	onList := false
	for _, cm := range allowed {
		if cm.MissionID == missionID {
			onList = true
			break
		}
	}
	if !onList {
		return nil, ErrMissionNotAllowed
	}

	existing, err := s.selections.GetMissionSelection(userID, classID)
	if err != nil {
		return nil, err
	}
	id := newID()
	if existing != nil {
		id = existing.ID
	}
	ms := models.MissionSelection{
		ID:        id,
		UserID:    userID,
		ClassID:   classID,
		MissionID: missionID,
	}
	if err := s.selections.UpsertMissionSelection(ms); err != nil {
		return nil, err
	}
	return &ms, nil
}

// GetMissionSelection returns the student's mission choice, nil when none
func (s *SelectionService) GetMissionSelection(userID, classID string) (*models.MissionSelection, error) {
	return s.selections.GetMissionSelection(userID, classID)
}
