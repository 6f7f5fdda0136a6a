package models

import "roboteamup/internal/store"

// ClassRole is a user's role within one class, independent of the global
// role (an admin may still sit in a class as a student).
type ClassRole string

const (
	ClassRoleStudent ClassRole = "STUDENT"
	ClassRoleTeacher ClassRole = "TEACHER"
)

// Enrollment ties a user to a class. Callers keep at most one per
// (userId, classId) pair; the store does not enforce it.
type Enrollment struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ClassID     string    `json:"classId"`
	RoleInClass ClassRole `json:"roleInClass"`
}

// EnrollmentFromRecord maps an Enrollments row to an Enrollment.
func EnrollmentFromRecord(r store.Record) Enrollment {
	role := ClassRole(r["roleInClass"])
	if role == "" {
		role = ClassRoleStudent
	}
	return Enrollment{
		ID:          r["id"],
		UserID:      r["userId"],
		ClassID:     r["classId"],
		RoleInClass: role,
	}
}

// Record maps the Enrollment back to an Enrollments row.
func (e Enrollment) Record() store.Record {
	return store.Record{
		"id":          e.ID,
		"userId":      e.UserID,
		"classId":     e.ClassID,
		"roleInClass": string(e.RoleInClass),
	}
}
