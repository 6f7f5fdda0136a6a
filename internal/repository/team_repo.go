package repository

import (
	"fmt"

	"roboteamup/internal/models"
	"roboteamup/internal/store"
)

// TeamRepository handles row-store operations for teams and team members
type TeamRepository struct {
	store *store.Store
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(s *store.Store) *TeamRepository {
	return &TeamRepository{store: s}
}

// GetTeamsByClass retrieves every team in a class
func (r *TeamRepository) GetTeamsByClass(classID string) ([]models.Team, error) {
	recs, err := r.store.ReadAll(store.TableTeams)
	if err != nil {
		return nil, fmt.Errorf("failed to read teams: %w", err)
	}
	var out []models.Team
	for _, rec := range recs {
		t := models.TeamFromRecord(rec)
		if t.ClassID == classID {
			out = append(out, t)
		}
	}
	return out, nil
}

// GetMembersByTeam retrieves the members of one team
func (r *TeamRepository) GetMembersByTeam(teamID string) ([]models.TeamMember, error) {
	recs, err := r.store.ReadAll(store.TableTeamMembers)
	if err != nil {
		return nil, fmt.Errorf("failed to read team members: %w", err)
	}
	var out []models.TeamMember
	for _, rec := range recs {
		m := models.TeamMemberFromRecord(rec)
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ReplaceTeams clears a class's teams and their memberships and writes
// the new set in two batches.
func (r *TeamRepository) ReplaceTeams(classID string, teams []models.Team, members []models.TeamMember) error {
	old, err := r.GetTeamsByClass(classID)
	if err != nil {
		return err
	}
	oldIDs := make(map[string]bool, len(old))
	for _, t := range old {
		oldIDs[t.ID] = true
	}
	if _, err := r.store.DeleteWhere(store.TableTeamMembers, func(rec store.Record) bool {
		return oldIDs[rec["teamId"]]
	}); err != nil {
		return fmt.Errorf("failed to clear team members: %w", err)
	}
	if _, err := r.store.DeleteWhere(store.TableTeams, func(rec store.Record) bool {
		return rec["classId"] == classID
	}); err != nil {
		return fmt.Errorf("failed to clear teams: %w", err)
	}

	teamRecs := make([]store.Record, len(teams))
	for i, t := range teams {
		teamRecs[i] = t.Record()
	}
	if _, err := r.store.AppendMany(store.TableTeams, teamRecs); err != nil {
		return fmt.Errorf("failed to write teams: %w", err)
	}
	memberRecs := make([]store.Record, len(members))
	for i, m := range members {
		memberRecs[i] = m.Record()
	}
	if _, err := r.store.AppendMany(store.TableTeamMembers, memberRecs); err != nil {
		return fmt.Errorf("failed to write team members: %w", err)
	}
	return nil
}

// DeleteTeamsByClass removes a class's teams and their memberships
func (r *TeamRepository) DeleteTeamsByClass(classID string) (int, error) {
	old, err := r.GetTeamsByClass(classID)
	if err != nil {
		return 0, err
	}
	oldIDs := make(map[string]bool, len(old))
	for _, t := range old {
		oldIDs[t.ID] = true
	}
	total := 0
	n, err := r.store.DeleteWhere(store.TableTeamMembers, func(rec store.Record) bool {
		return oldIDs[rec["teamId"]]
	})
	total += n
	if err != nil {
		return total, fmt.Errorf("failed to delete team members: %w", err)
	}
	n, err = r.store.DeleteWhere(store.TableTeams, func(rec store.Record) bool {
		return rec["classId"] == classID
	})
	total += n
	if err != nil {
		return total, fmt.Errorf("failed to delete teams: %w", err)
	}
	return total, nil
}

// DeleteMembershipsByUser removes a user from every team
func (r *TeamRepository) DeleteMembershipsByUser(userID string) (int, error) {
	n, err := r.store.DeleteWhere(store.TableTeamMembers, func(rec store.Record) bool {
		return rec["userId"] == userID
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete team memberships: %w", err)
	}
	return n, nil
}
