package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roboteamup/internal/models"
	"roboteamup/internal/repository"
	"roboteamup/internal/security"
	"roboteamup/internal/service"
	"roboteamup/internal/store"
)

func newAuthMiddleware(t *testing.T) (*Middleware, *repository.SessionRepository) {
	t.Helper()
	s := store.New(store.NewMemoryGridSet(store.Tables()))
	users := repository.NewUserRepository(s)
	enrollments := repository.NewEnrollmentRepository(s)
	sessions := repository.NewSessionRepository(s)

	if err := users.CreateUser(models.User{
		ID: "u1", Email: "a@example.com", DisplayName: "Ada", Role: models.RoleStudent,
	}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if err := sessions.CreateSession(models.Session{
		ID: "live-session", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	auth := service.NewAuthService(users, enrollments, sessions, nil, time.Hour)
	return NewMiddleware(auth, security.NewRateLimiter(2, time.Minute)), sessions
}

func TestRequireAuthWithCookie(t *testing.T) {
	m, _ := newAuthMiddleware(t)

	var got *models.User
	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		got = UserFromContext(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: "live-session"})
	recorder := httptest.NewRecorder()
	handler(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if got == nil || got.ID != "u1" {
		t.Errorf("expected u1 on the context, got %v", got)
	}
}

func TestRequireAuthWithBearerToken(t *testing.T) {
	m, _ := newAuthMiddleware(t)

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer live-session")
	recorder := httptest.NewRecorder()
	handler(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestRequireAuthRejectsMissingSession(t *testing.T) {
	m, _ := newAuthMiddleware(t)

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
	// The stale cookie is cleared on rejection.
	cleared := false
	for _, c := range recorder.Result().Cookies() {
		if c.Name == security.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the session cookie cleared")
	}
}

func TestRequireAuthRejectsUnknownSession(t *testing.T) {
	m, _ := newAuthMiddleware(t)

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: "forged"})
	recorder := httptest.NewRecorder()
	handler(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestRequireTeacherRejectsStudent(t *testing.T) {
	m, _ := newAuthMiddleware(t)

	handler := m.RequireTeacher(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: "live-session"})
	recorder := httptest.NewRecorder()
	handler(recorder, req)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
}

func TestRateLimit(t *testing.T) {
	m, _ := newAuthMiddleware(t)

	handler := m.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, recorder.Code)
		}
	}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler(recorder, req)
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over budget, got %d", recorder.Code)
	}

	// A different client has its own budget.
	recorder = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	handler(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for a fresh client, got %d", recorder.Code)
	}
}
