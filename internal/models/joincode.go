package models

import (
	"strconv"
	"time"

	"roboteamup/internal/store"
)

// JoinCode grants time- and use-limited self-enrollment into a class.
type JoinCode struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"classId"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	MaxUses   int       `json:"maxUses"`
	Uses      int       `json:"uses"`
	Active    bool      `json:"active"`
}

// IsExpired reports whether the code's expiry has passed.
func (c JoinCode) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}

// AtCapacity reports whether the code has been used up.
func (c JoinCode) AtCapacity() bool {
	return c.MaxUses > 0 && c.Uses >= c.MaxUses
}

// JoinCodeFromRecord maps a ClassJoinCodes row.
func JoinCodeFromRecord(r store.Record) JoinCode {
	expires, _ := time.Parse(time.RFC3339, r["expiresAt"])
	maxUses, _ := strconv.Atoi(r["maxUses"])
	uses, _ := strconv.Atoi(r["uses"])
	return JoinCode{
		ID:        r["id"],
		ClassID:   r["classId"],
		Code:      r["code"],
		ExpiresAt: expires,
		MaxUses:   maxUses,
		Uses:      uses,
		Active:    ParseFlexibleBool(r["active"]),
	}
}

// Record maps the JoinCode back to a row.
func (c JoinCode) Record() store.Record {
	return store.Record{
		"id":        c.ID,
		"classId":   c.ClassID,
		"code":      c.Code,
		"expiresAt": c.ExpiresAt.UTC().Format(time.RFC3339),
		"maxUses":   strconv.Itoa(c.MaxUses),
		"uses":      strconv.Itoa(c.Uses),
		"active":    FormatBool(c.Active),
	}
}
