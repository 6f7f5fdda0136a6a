package repository

import (
	"fmt"
	"time"

	"roboteamup/internal/models"
	"roboteamup/internal/store"
)

// SessionRepository handles row-store operations for login sessions
type SessionRepository struct {
	store *store.Store
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(s *store.Store) *SessionRepository {
	return &SessionRepository{store: s}
}

// GetSession retrieves a session by id, nil when not found
func (r *SessionRepository) GetSession(id string) (*models.Session, error) {
	recs, err := r.store.ReadAll(store.TableSessions)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	for _, rec := range recs {
		s := models.SessionFromRecord(rec)
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, nil
}

// CreateSession appends a new session row
func (r *SessionRepository) CreateSession(s models.Session) error {
	if err := r.store.Append(store.TableSessions, s.Record()); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// DeleteSession removes one session row
func (r *SessionRepository) DeleteSession(id string) (bool, error) {
	ok, err := r.store.DeleteByID(store.TableSessions, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	return ok, nil
}

// DeleteByUser removes every session belonging to a user
func (r *SessionRepository) DeleteByUser(userID string) (int, error) {
	n, err := r.store.DeleteWhere(store.TableSessions, func(rec store.Record) bool {
		return rec["userId"] == userID
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return n, nil
}

// DeleteExpired removes every session past its expiry and returns the count
func (r *SessionRepository) DeleteExpired(now time.Time) (int, error) {
	n, err := r.store.DeleteWhere(store.TableSessions, func(rec store.Record) bool {
		s := models.SessionFromRecord(rec)
		return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return n, nil
}
