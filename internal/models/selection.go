package models

import (
	"strconv"
	"strings"

	"roboteamup/internal/store"
)

// ValueSelection is one student's weighted pick of one value in one
// class. Per (userId, classId) callers keep at most 3 rows with a total
// CoinWeight of at most 5; the selection validator enforces that at
// write time.
type ValueSelection struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	ClassID    string `json:"classId"`
	ValueID    string `json:"valueId"`
	CoinWeight int    `json:"coinWeight"`
}

// ValueSelectionFromRecord maps a ValueSelections row.
func ValueSelectionFromRecord(r store.Record) ValueSelection {
	return ValueSelection{
		ID:         r["id"],
		UserID:     r["userId"],
		ClassID:    r["classId"],
		ValueID:    r["valueId"],
		CoinWeight: parseCoinWeight(r["coinWeight"]),
	}
}

// Record maps the ValueSelection back to a row.
func (s ValueSelection) Record() store.Record {
	return store.Record{
		"id":         s.ID,
		"userId":     s.UserID,
		"classId":    s.ClassID,
		"valueId":    s.ValueID,
		"coinWeight": strconv.Itoa(s.CoinWeight),
	}
}

// parseCoinWeight tolerates number cells that come back as "3" or "3.0".
func parseCoinWeight(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

// MissionSelection is one student's mission pick in one class, kept
// unique per (userId, classId).
type MissionSelection struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ClassID   string `json:"classId"`
	MissionID string `json:"missionId"`
}

// MissionSelectionFromRecord maps a MissionSelections row.
func MissionSelectionFromRecord(r store.Record) MissionSelection {
	return MissionSelection{
		ID:        r["id"],
		UserID:    r["userId"],
		ClassID:   r["classId"],
		MissionID: r["missionId"],
	}
}

// Record maps the MissionSelection back to a row.
func (s MissionSelection) Record() store.Record {
	return store.Record{
		"id":        s.ID,
		"userId":    s.UserID,
		"classId":   s.ClassID,
		"missionId": s.MissionID,
	}
}

// VisionText is a student's saved vision statement for one class,
// upserted by (userId, classId).
type VisionText struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ClassID   string `json:"classId"`
	Text      string `json:"text"`
	UpdatedAt string `json:"updatedAt"`
}

// VisionTextFromRecord maps a VisionTexts row.
func VisionTextFromRecord(r store.Record) VisionText {
	return VisionText{
		ID:        r["id"],
		UserID:    r["userId"],
		ClassID:   r["classId"],
		Text:      r["text"],
		UpdatedAt: r["updatedAt"],
	}
}

// Record maps the VisionText back to a row.
func (v VisionText) Record() store.Record {
	return store.Record{
		"id":        v.ID,
		"userId":    v.UserID,
		"classId":   v.ClassID,
		"text":      v.Text,
		"updatedAt": v.UpdatedAt,
	}
}
