package models

import "roboteamup/internal/store"

// SyncSettings controls roster synchronization for one class. ClassName
// is a denormalized cache for listings.
type SyncSettings struct {
	ID                    string `json:"id"`
	ClassID               string `json:"classId"`
	ClassroomCourseID     string `json:"classroomCourseId,omitempty"`
	ClassName             string `json:"className,omitempty"`
	SyncEnabled           bool   `json:"syncEnabled"`
	RemoveMissingStudents bool   `json:"removeMissingStudents"`
}

// SyncSettingsFromRecord maps a SyncSettings row.
func SyncSettingsFromRecord(r store.Record) SyncSettings {
	return SyncSettings{
		ID:                    r["id"],
		ClassID:               r["classId"],
		ClassroomCourseID:     r["classroomCourseId"],
		ClassName:             r["className"],
		SyncEnabled:           ParseFlexibleBool(r["syncEnabled"]),
		RemoveMissingStudents: ParseFlexibleBool(r["removeMissingStudents"]),
	}
}

// Record maps the SyncSettings back to a row.
func (s SyncSettings) Record() store.Record {
	return store.Record{
		"id":                    s.ID,
		"classId":               s.ClassID,
		"classroomCourseId":     s.ClassroomCourseID,
		"className":             s.ClassName,
		"syncEnabled":           FormatBool(s.SyncEnabled),
		"removeMissingStudents": FormatBool(s.RemoveMissingStudents),
	}
}
