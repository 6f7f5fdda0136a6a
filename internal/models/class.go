package models

import "roboteamup/internal/store"

// Class is one robotics class (or similar group) students enroll into.
// ClassroomCourseID links it to a Google Classroom course when the class
// was imported from there.
type Class struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Type              string `json:"type,omitempty"`
	ClassroomCourseID string `json:"classroomCourseId,omitempty"`
}

// ClassFromRecord maps a Classes row to a Class.
func ClassFromRecord(r store.Record) Class {
	return Class{
		ID:                r["id"],
		Name:              r["name"],
		Type:              r["type"],
		ClassroomCourseID: r["classroomCourseId"],
	}
}

// Record maps the Class back to a Classes row.
func (c Class) Record() store.Record {
	return store.Record{
		"id":                c.ID,
		"name":              c.Name,
		"type":              c.Type,
		"classroomCourseId": c.ClassroomCourseID,
	}
}
