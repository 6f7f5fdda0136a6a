package security

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestRateLimiterAllowsUpToRate(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d: expected allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("expected the 4th request rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("expected a different client to have its own budget")
	}
}

func TestRateLimiterRefillsAfterWindow(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	if !rl.Allow("1.2.3.4") {
		t.Fatal("expected the first request allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("expected the second request rejected")
	}
	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("1.2.3.4") {
		t.Error("expected the bucket refilled after the window")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{
			name:     "forwarded-for wins",
			headers:  map[string]string{"X-Forwarded-For": "9.9.9.9", "X-Real-IP": "8.8.8.8"},
			remote:   "1.1.1.1:1234",
			expected: "9.9.9.9",
		},
		{
			name:     "real-ip next",
			headers:  map[string]string{"X-Real-IP": "8.8.8.8"},
			remote:   "1.1.1.1:1234",
			expected: "8.8.8.8",
		},
		{
			name:     "remote addr last",
			remote:   "1.1.1.1:1234",
			expected: "1.1.1.1:1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGenerateSessionIDUnique(t *testing.T) {
	a := GenerateSessionID()
	b := GenerateSessionID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}

func TestCreateSessionCookie(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/", nil)
	expires := time.Now().Add(time.Hour)

	c := CreateSessionCookie(r, "session-id", expires)
	if c.Name != SessionCookieName {
		t.Errorf("expected cookie name %q, got %q", SessionCookieName, c.Name)
	}
	if !c.HttpOnly {
		t.Error("expected an HttpOnly cookie")
	}
	if c.Secure {
		t.Error("expected Secure off for a plain HTTP request")
	}

	r.Header.Set("X-Forwarded-Proto", "https")
	c = CreateSessionCookie(r, "session-id", expires)
	if !c.Secure {
		t.Error("expected Secure on behind a TLS-terminating proxy")
	}
}

func TestAudienceContains(t *testing.T) {
	aud := jwt.ClaimStrings{"client-a", "client-b"}
	if !audienceContains(aud, "client-b") {
		t.Error("expected client-b found")
	}
	if audienceContains(aud, "client-c") {
		t.Error("expected client-c absent")
	}
	if audienceContains(nil, "client-a") {
		t.Error("expected nothing in an empty audience")
	}
}

func TestCreateDeleteCookieClears(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	c := CreateDeleteCookie(r)
	if c.MaxAge >= 0 {
		t.Errorf("expected a negative MaxAge, got %d", c.MaxAge)
	}
	if c.Value != "" {
		t.Errorf("expected an empty value, got %q", c.Value)
	}
}
