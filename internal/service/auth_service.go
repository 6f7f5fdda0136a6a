package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"roboteamup/internal/models"
	"roboteamup/internal/repository"
	"roboteamup/internal/security"
)

// TokenVerifier validates an ID token and returns the identity it asserts
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (security.GoogleIdentity, error)
}

// AuthService resolves identities to registered users and manages
// login sessions.
type AuthService struct {
	users           *repository.UserRepository
	enrollments     *repository.EnrollmentRepository
	sessions        *repository.SessionRepository
	verifier        TokenVerifier
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(users *repository.UserRepository, enrollments *repository.EnrollmentRepository, sessions *repository.SessionRepository, verifier TokenVerifier, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		users:           users,
		enrollments:     enrollments,
		sessions:        sessions,
		verifier:        verifier,
		sessionDuration: sessionDuration,
	}
}

// Login verifies a Google ID token, resolves the registered user behind
// it, and opens a session. Unknown identities are rejected, never
// auto-provisioned.
func (s *AuthService) Login(ctx context.Context, idToken string) (*models.User, *models.Session, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, nil, ErrNoIdentity
	}
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoIdentity, err)
	}

	user, err := s.ResolveIdentity(identity.Email, identity.Subject)
	if err != nil {
		return nil, nil, err
	}

	// Record the Google subject on first login so roster sync can match
	// the account even if the email changes later.
	if user.GoogleID == "" && identity.Subject != "" {
		if _, err := s.users.UpdateUser(user.ID, map[string]string{"googleId": identity.Subject}); err != nil {
			log.Printf("Warning: failed to record google id for user %s: %v", user.ID, err)
		} else {
			user.GoogleID = identity.Subject
		}
	}

	now := time.Now()
	session := models.Session{
		ID:        security.GenerateSessionID(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionDuration),
		CreatedAt: now,
	}
	if err := s.sessions.CreateSession(session); err != nil {
		return nil, nil, err
	}
	return user, &session, nil
}

// ResolveIdentity finds the registered user for an email or external
// account id. Email matches win over id matches.
func (s *AuthService) ResolveIdentity(email, googleID string) (*models.User, error) {
	if strings.TrimSpace(email) == "" && strings.TrimSpace(googleID) == "" {
		return nil, ErrNoIdentity
	}
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.users.GetUserByGoogleID(googleID)
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		return nil, ErrUnregisteredUser
	}
	return user, nil
}

// ValidateSession returns the user behind a live session id. Expired
// sessions are removed on sight.
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, ErrNoIdentity
	}
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoIdentity
	}
	if session.IsExpired() {
		if _, err := s.sessions.DeleteSession(session.ID); err != nil {
			log.Printf("Warning: failed to delete expired session: %v", err)
		}
		return nil, ErrNoIdentity
	}
	user, err := s.users.GetUserByID(session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnregisteredUser
	}
	return user, nil
}

// Logout closes a session
func (s *AuthService) Logout(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	_, err := s.sessions.DeleteSession(sessionID)
	return err
}

// RequireTeacherOrAdmin gates staff-only operations
func (s *AuthService) RequireTeacherOrAdmin(user *models.User) error {
	if user == nil {
		return ErrNoIdentity
	}
	if !user.IsTeacherOrAdmin() {
		return ErrForbidden
	}
	return nil
}

// RequireEnrolled gates class-scoped operations for students. Teachers
// and admins pass regardless of enrollment.
func (s *AuthService) RequireEnrolled(user *models.User, classID string) error {
	if user == nil {
		return ErrNoIdentity
	}
	if user.IsTeacherOrAdmin() {
		return nil
	}
	enrolled, err := s.enrollments.IsEnrolled(user.ID, classID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}
	return nil
}

// CleanupExpiredSessions prunes sessions past their expiry
func (s *AuthService) CleanupExpiredSessions() (int, error) {
	return s.sessions.DeleteExpired(time.Now())
}
