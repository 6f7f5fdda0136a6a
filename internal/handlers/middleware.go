package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"roboteamup/internal/models"
	"roboteamup/internal/security"
	"roboteamup/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// UserContextKey carries the authenticated user through the request
const UserContextKey ContextKey = "user"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	rateLimiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, rateLimiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		rateLimiter: rateLimiter,
	}
}

// RequireAuth resolves the session from the cookie or an Authorization
// bearer header and puts the user on the request context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(security.SessionCookieName); err == nil {
			sessionID = cookie.Value
		}
		if sessionID == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				sessionID = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		user, err := m.authService.ValidateSession(sessionID)
		if err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r))
			respondWithServiceError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireTeacher additionally rejects callers below TEACHER
func (m *Middleware) RequireTeacher(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r)
		if err := m.authService.RequireTeacherOrAdmin(user); err != nil {
			respondWithServiceError(w, err)
			return
		}
		next(w, r)
	})
}

// RequireAdmin additionally rejects callers below ADMIN
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r)
		if user == nil || user.Role != models.RoleAdmin {
			respondWithServiceError(w, service.ErrForbidden)
			return
		}
		next(w, r)
	})
}

// RateLimit rejects clients that exceed the request budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.rateLimiter.Allow(security.GetClientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			return
		}
		next(w, r)
	}
}

// UserFromContext retrieves the authenticated user set by RequireAuth
func UserFromContext(r *http.Request) *models.User {
	user, _ := r.Context().Value(UserContextKey).(*models.User)
	return user
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
