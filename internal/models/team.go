package models

import "roboteamup/internal/store"

// Team is a named group of students within a class, optionally attached
// to a mission.
type Team struct {
	ID        string `json:"id"`
	ClassID   string `json:"classId"`
	Name      string `json:"name"`
	MissionID string `json:"missionId,omitempty"`
}

// TeamFromRecord maps a Teams row.
func TeamFromRecord(r store.Record) Team {
	return Team{
		ID:        r["id"],
		ClassID:   r["classId"],
		Name:      r["name"],
		MissionID: r["missionId"],
	}
}

// Record maps the Team back to a row.
func (t Team) Record() store.Record {
	return store.Record{
		"id":        t.ID,
		"classId":   t.ClassID,
		"name":      t.Name,
		"missionId": t.MissionID,
	}
}

// TeamMember places one user on one team.
type TeamMember struct {
	ID     string `json:"id"`
	TeamID string `json:"teamId"`
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
}

// TeamMemberFromRecord maps a TeamMembers row.
func TeamMemberFromRecord(r store.Record) TeamMember {
	return TeamMember{
		ID:     r["id"],
		TeamID: r["teamId"],
		UserID: r["userId"],
		Role:   r["role"],
	}
}

// Record maps the TeamMember back to a row.
func (m TeamMember) Record() store.Record {
	return store.Record{
		"id":     m.ID,
		"teamId": m.TeamID,
		"userId": m.UserID,
		"role":   m.Role,
	}
}
