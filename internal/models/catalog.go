package models

import "roboteamup/internal/store"

// Value is a global catalog entry students can weight with coins.
type Value struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// ValueFromRecord maps a Values row to a Value.
func ValueFromRecord(r store.Record) Value {
	return Value{
		ID:     r["id"],
		Slug:   r["slug"],
		Label:  r["label"],
		Active: ParseFlexibleBool(r["active"]),
	}
}

// Record maps the Value back to a Values row.
func (v Value) Record() store.Record {
	return store.Record{
		"id":     v.ID,
		"slug":   v.Slug,
		"label":  v.Label,
		"active": FormatBool(v.Active),
	}
}

// Mission is a global catalog entry; per-class visibility lives in
// ClassMission.
type Mission struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// MissionFromRecord maps a Missions row to a Mission.
func MissionFromRecord(r store.Record) Mission {
	return Mission{
		ID:     r["id"],
		Slug:   r["slug"],
		Label:  r["label"],
		Active: ParseFlexibleBool(r["active"]),
	}
}

// Record maps the Mission back to a Missions row.
func (m Mission) Record() store.Record {
	return store.Record{
		"id":     m.ID,
		"slug":   m.Slug,
		"label":  m.Label,
		"active": FormatBool(m.Active),
	}
}

// ClassMission allows one mission for one class.
type ClassMission struct {
	ID        string
	ClassID   string
	MissionID string
}

// ClassMissionFromRecord maps a ClassMission row.
func ClassMissionFromRecord(r store.Record) ClassMission {
	return ClassMission{
		ID:        r["id"],
		ClassID:   r["classId"],
		MissionID: r["missionId"],
	}
}

// Record maps the ClassMission back to a row.
func (cm ClassMission) Record() store.Record {
	return store.Record{
		"id":        cm.ID,
		"classId":   cm.ClassID,
		"missionId": cm.MissionID,
	}
}

// Catalog is a point-in-time snapshot of the active value and mission
// sets. Operations that validate against "currently active" entries take
// a Catalog rather than re-reading ambient state mid-operation.
type Catalog struct {
	Values   []Value
	Missions []Mission
}

// ValueByID looks up an active value.
func (c Catalog) ValueByID(id string) (Value, bool) {
	for _, v := range c.Values {
		if v.ID == id {
			return v, true
		}
	}
	return Value{}, false
}
