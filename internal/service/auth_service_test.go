package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"roboteamup/internal/models"
	"roboteamup/internal/security"
)

// fakeVerifier maps tokens to identities without touching Google.
type fakeVerifier struct {
	identities map[string]security.GoogleIdentity
}

func (f *fakeVerifier) Verify(ctx context.Context, idToken string) (security.GoogleIdentity, error) {
	id, ok := f.identities[idToken]
	if !ok {
		return security.GoogleIdentity{}, errors.New("invalid token")
	}
	return id, nil
}

func newAuthFixture(t *testing.T) (*testEnv, *AuthService) {
	t.Helper()
	env := newTestEnv()
	verifier := &fakeVerifier{identities: map[string]security.GoogleIdentity{
		"good-token": {Subject: "g-alice", Email: "alice@example.com", Name: "Alice"},
	}}
	return env, NewAuthService(env.users, env.enrollments, env.sessions, verifier, time.Hour)
}

func TestLogin(t *testing.T) {
	env, svc := newAuthFixture(t)
	if err := env.users.CreateUser(models.User{
		ID: "u1", Email: "alice@example.com", DisplayName: "Alice", Role: models.RoleStudent,
	}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	user, session, err := svc.Login(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("expected user u1, got %q", user.ID)
	}
	if session.UserID != "u1" {
		t.Errorf("expected session for u1, got %q", session.UserID)
	}
	if session.ExpiresAt.Before(time.Now()) {
		t.Error("expected a future expiry")
	}

	// First login records the Google subject for later roster matching.
	stored, _ := env.users.GetUserByID("u1")
	if stored.GoogleID != "g-alice" {
		t.Errorf("expected google id recorded, got %q", stored.GoogleID)
	}
}

func TestLoginRejections(t *testing.T) {
	_, svc := newAuthFixture(t)

	tests := []struct {
		name     string
		token    string
		expected error
	}{
		{"blank token", "  ", ErrNoIdentity},
		{"bad token", "forged", ErrNoIdentity},
		{"valid token, unknown user", "good-token", ErrUnregisteredUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tt.token)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Login() error = %v, want %v", err, tt.expected)
			}
		})
	}
}

func TestResolveIdentityEmailWinsOverGoogleID(t *testing.T) {
	env, svc := newAuthFixture(t)
	env.users.CreateUser(models.User{ID: "u1", Email: "alice@example.com"})
	env.users.CreateUser(models.User{ID: "u2", Email: "other@example.com", GoogleID: "g-alice"})

	user, err := svc.ResolveIdentity("alice@example.com", "g-alice")
	if err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("expected the email match to win, got %q", user.ID)
	}

	user, err = svc.ResolveIdentity("unknown@example.com", "g-alice")
	if err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}
	if user.ID != "u2" {
		t.Errorf("expected fallback to the google id match, got %q", user.ID)
	}

	if _, err := svc.ResolveIdentity("", ""); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("expected ErrNoIdentity, got %v", err)
	}
	if _, err := svc.ResolveIdentity("nobody@example.com", "g-nobody"); !errors.Is(err, ErrUnregisteredUser) {
		t.Errorf("expected ErrUnregisteredUser, got %v", err)
	}
}

func TestValidateSession(t *testing.T) {
	env, svc := newAuthFixture(t)
	env.users.CreateUser(models.User{ID: "u1", Email: "alice@example.com"})
	env.sessions.CreateSession(models.Session{
		ID: "live", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	})
	env.sessions.CreateSession(models.Session{
		ID: "stale", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour), CreatedAt: time.Now().Add(-2 * time.Hour),
	})

	user, err := svc.ValidateSession("live")
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("expected user u1, got %q", user.ID)
	}

	if _, err := svc.ValidateSession("stale"); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("expected ErrNoIdentity for an expired session, got %v", err)
	}
	// An expired session is removed on sight.
	if s, _ := env.sessions.GetSession("stale"); s != nil {
		t.Error("expected the expired session deleted")
	}

	if _, err := svc.ValidateSession(""); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("expected ErrNoIdentity for an empty id, got %v", err)
	}
	if _, err := svc.ValidateSession("unknown"); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("expected ErrNoIdentity for an unknown id, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	env, svc := newAuthFixture(t)
	env.sessions.CreateSession(models.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)})

	if err := svc.Logout("s1"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if s, _ := env.sessions.GetSession("s1"); s != nil {
		t.Error("expected the session closed")
	}
	if err := svc.Logout(""); err != nil {
		t.Errorf("Logout(\"\") error = %v", err)
	}
}

func TestRequireTeacherOrAdmin(t *testing.T) {
	_, svc := newAuthFixture(t)

	tests := []struct {
		name     string
		user     *models.User
		expected error
	}{
		{"nil user", nil, ErrNoIdentity},
		{"student", &models.User{Role: models.RoleStudent}, ErrForbidden},
		{"teacher", &models.User{Role: models.RoleTeacher}, nil},
		{"admin", &models.User{Role: models.RoleAdmin}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.RequireTeacherOrAdmin(tt.user)
			if !errors.Is(err, tt.expected) {
				t.Errorf("RequireTeacherOrAdmin() error = %v, want %v", err, tt.expected)
			}
		})
	}
}

func TestRequireEnrolled(t *testing.T) {
	env, svc := newAuthFixture(t)
	env.enrollments.CreateEnrollment(models.Enrollment{ID: "e1", UserID: "u1", ClassID: "c1"})

	student := &models.User{ID: "u1", Role: models.RoleStudent}
	if err := svc.RequireEnrolled(student, "c1"); err != nil {
		t.Errorf("expected enrolled student to pass, got %v", err)
	}
	if err := svc.RequireEnrolled(student, "c2"); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("expected ErrNotEnrolled, got %v", err)
	}

	teacher := &models.User{ID: "u2", Role: models.RoleTeacher}
	if err := svc.RequireEnrolled(teacher, "c1"); err != nil {
		t.Errorf("expected staff to bypass enrollment, got %v", err)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	env, svc := newAuthFixture(t)
	env.sessions.CreateSession(models.Session{ID: "live", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)})
	env.sessions.CreateSession(models.Session{ID: "stale1", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)})
	env.sessions.CreateSession(models.Session{ID: "stale2", UserID: "u2", ExpiresAt: time.Now().Add(-time.Minute)})

	n, err := svc.CleanupExpiredSessions()
	if err != nil {
		t.Fatalf("CleanupExpiredSessions() error = %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 sessions pruned, got %d", n)
	}
	if s, _ := env.sessions.GetSession("live"); s == nil {
		t.Error("expected the live session kept")
	}
}
