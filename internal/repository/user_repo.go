package repository

import (
	"fmt"
	"strings"

	"roboteamup/internal/models"
	"roboteamup/internal/store"
)

// UserRepository handles row-store operations for users
type UserRepository struct {
	store *store.Store
}

// NewUserRepository creates a new user repository
func NewUserRepository(s *store.Store) *UserRepository {
	return &UserRepository{store: s}
}

// GetAllUsers retrieves every user
func (r *UserRepository) GetAllUsers() ([]models.User, error) {
	recs, err := r.store.ReadAll(store.TableUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	users := make([]models.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, models.UserFromRecord(rec))
	}
	return users, nil
}

// GetUserByID retrieves a user by id, nil when not found
func (r *UserRepository) GetUserByID(id string) (*models.User, error) {
	users, err := r.GetAllUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

// GetUserByEmail retrieves a user by case-insensitive email match,
// nil when not found
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	users, err := r.GetAllUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.ToLower(u.Email) == email {
			return &u, nil
		}
	}
	return nil, nil
}

// GetUserByGoogleID retrieves a user by the external roster identifier,
// nil when not found
func (r *UserRepository) GetUserByGoogleID(googleID string) (*models.User, error) {
	if googleID == "" {
		return nil, nil
	}
	users, err := r.GetAllUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.GoogleID == googleID {
			return &u, nil
		}
	}
	return nil, nil
}

// EmailInUseByOther reports whether another user already has this email
func (r *UserRepository) EmailInUseByOther(id, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	users, err := r.GetAllUsers()
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.ID != id && strings.ToLower(u.Email) == email {
			return true, nil
		}
	}
	return false, nil
}

// CreateUser appends a new user row
func (r *UserRepository) CreateUser(u models.User) error {
	if err := r.store.Append(store.TableUsers, u.Record()); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CreateUsers appends a batch of user rows in one write
func (r *UserRepository) CreateUsers(users []models.User) (int, error) {
	recs := make([]store.Record, len(users))
	for i, u := range users {
		recs[i] = u.Record()
	}
	n, err := r.store.AppendMany(store.TableUsers, recs)
	if err != nil {
		return n, fmt.Errorf("failed to create users: %w", err)
	}
	return n, nil
}

// UpdateUser patches selected user fields by id. Empty patch values are
// written through, so callers pass only what they mean to change.
func (r *UserRepository) UpdateUser(id string, patch store.Record) (bool, error) {
	ok, err := r.store.UpdateByID(store.TableUsers, id, patch)
	if err != nil {
		return false, fmt.Errorf("failed to update user: %w", err)
	}
	return ok, nil
}

// DeleteUser removes the user row. Cascades are the caller's concern.
func (r *UserRepository) DeleteUser(id string) (bool, error) {
	ok, err := r.store.DeleteByID(store.TableUsers, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return ok, nil
}
