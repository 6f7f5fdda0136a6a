package models

import (
	"time"

	"roboteamup/internal/store"
)

// Session is a logged-in user's server-side session.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the session has expired.
func (s Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SessionFromRecord maps a Sessions row.
func SessionFromRecord(r store.Record) Session {
	expires, _ := time.Parse(time.RFC3339, r["expiresAt"])
	created, _ := time.Parse(time.RFC3339, r["createdAt"])
	return Session{
		ID:        r["id"],
		UserID:    r["userId"],
		ExpiresAt: expires,
		CreatedAt: created,
	}
}

// Record maps the Session back to a row.
func (s Session) Record() store.Record {
	return store.Record{
		"id":        s.ID,
		"userId":    s.UserID,
		"expiresAt": s.ExpiresAt.UTC().Format(time.RFC3339),
		"createdAt": s.CreatedAt.UTC().Format(time.RFC3339),
	}
}
