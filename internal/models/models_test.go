package models

import (
	"testing"
	"time"
)

func TestParseFlexibleBool(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"TRUE", true},
		{"true", true},
		{"True", true},
		{"1", true},
		{"YES", true},
		{"yes", true},
		{"ON", true},
		{" true ", true},
		{"FALSE", false},
		{"0", false},
		{"no", false},
		{"", false},
		{"maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFlexibleBool(tt.input); got != tt.expected {
				t.Errorf("ParseFlexibleBool(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatBool(t *testing.T) {
	if FormatBool(true) != "TRUE" {
		t.Errorf("FormatBool(true) = %q, want TRUE", FormatBool(true))
	}
	if FormatBool(false) != "FALSE" {
		t.Errorf("FormatBool(false) = %q, want FALSE", FormatBool(false))
	}
}

func TestParseCoinWeight(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"3", 3},
		{"3.0", 3},
		{" 2 ", 2},
		{"", 0},
		{"abc", 0},
		{"-1", -1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseCoinWeight(tt.input); got != tt.expected {
				t.Errorf("parseCoinWeight(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestJoinCodeIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		code     JoinCode
		expected bool
	}{
		{
			name:     "no expiry never expires",
			code:     JoinCode{},
			expected: false,
		},
		{
			name:     "future expiry",
			code:     JoinCode{ExpiresAt: now.Add(time.Hour)},
			expected: false,
		},
		{
			name:     "past expiry",
			code:     JoinCode{ExpiresAt: now.Add(-time.Minute)},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.IsExpired(now); got != tt.expected {
				t.Errorf("IsExpired() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestJoinCodeAtCapacity(t *testing.T) {
	tests := []struct {
		name     string
		code     JoinCode
		expected bool
	}{
		{
			name:     "unlimited uses",
			code:     JoinCode{MaxUses: 0, Uses: 500},
			expected: false,
		},
		{
			name:     "under the cap",
			code:     JoinCode{MaxUses: 5, Uses: 4},
			expected: false,
		},
		{
			name:     "at the cap",
			code:     JoinCode{MaxUses: 5, Uses: 5},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.AtCapacity(); got != tt.expected {
				t.Errorf("AtCapacity() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSessionIsExpired(t *testing.T) {
	live := Session{ExpiresAt: time.Now().Add(time.Hour)}
	if live.IsExpired() {
		t.Error("expected future session to be live")
	}
	dead := Session{ExpiresAt: time.Now().Add(-time.Hour)}
	if !dead.IsExpired() {
		t.Error("expected past session to be expired")
	}
}

func TestUserFromRecordDefaultsRole(t *testing.T) {
	u := UserFromRecord(map[string]string{"id": "u1", "email": "a@example.com"})
	if u.Role != RoleStudent {
		t.Errorf("expected default role STUDENT, got %q", u.Role)
	}
}

func TestIsTeacherOrAdmin(t *testing.T) {
	tests := []struct {
		role     Role
		expected bool
	}{
		{RoleStudent, false},
		{RoleTeacher, true},
		{RoleAdmin, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			u := User{Role: tt.role}
			if got := u.IsTeacherOrAdmin(); got != tt.expected {
				t.Errorf("IsTeacherOrAdmin() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCatalogValueByID(t *testing.T) {
	c := Catalog{Values: []Value{{ID: "v1", Slug: "teamwork", Label: "Teamwork"}}}

	v, ok := c.ValueByID("v1")
	if !ok {
		t.Fatal("expected to find v1")
	}
	if v.Slug != "teamwork" {
		t.Errorf("expected slug teamwork, got %q", v.Slug)
	}

	if _, ok := c.ValueByID("v9"); ok {
		t.Error("expected v9 to be absent")
	}
}

func TestJoinCodeRecordRoundTrip(t *testing.T) {
	in := JoinCode{
		ID:        "jc1",
		ClassID:   "c1",
		Code:      "ABC234",
		ExpiresAt: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
		MaxUses:   10,
		Uses:      3,
		Active:    true,
	}

	out := JoinCodeFromRecord(in.Record())
	if out != in {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}
