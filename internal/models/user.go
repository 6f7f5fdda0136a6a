package models

import "roboteamup/internal/store"

// Role is a user's global role.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// User is a registered person: student, teacher, or admin.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
	GradeLevel  string `json:"gradeLevel,omitempty"`
	GoogleID    string `json:"googleId,omitempty"`
}

// IsTeacherOrAdmin reports whether the user may use teacher-level APIs.
func (u User) IsTeacherOrAdmin() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}

// UserFromRecord maps a Users row to a User.
func UserFromRecord(r store.Record) User {
	role := Role(r["role"])
	if role == "" {
		role = RoleStudent
	}
	return User{
		ID:          r["id"],
		Email:       r["email"],
		DisplayName: r["displayName"],
		Role:        role,
		GradeLevel:  r["gradeLevel"],
		GoogleID:    r["googleId"],
	}
}

// Record maps the User back to a Users row.
func (u User) Record() store.Record {
	return store.Record{
		"id":          u.ID,
		"email":       u.Email,
		"displayName": u.DisplayName,
		"role":        string(u.Role),
		"gradeLevel":  u.GradeLevel,
		"googleId":    u.GoogleID,
	}
}
