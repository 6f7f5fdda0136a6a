package service

import (
	"errors"
	"testing"

	"roboteamup/internal/models"
)

func seedCatalog(t *testing.T, env *testEnv) {
	t.Helper()
	values := []models.Value{
		{ID: "v1", Slug: "teamwork", Label: "Teamwork", Active: true},
		{ID: "v2", Slug: "creativity", Label: "Creativity", Active: true},
		{ID: "v3", Slug: "discovery", Label: "Discovery", Active: true},
		{ID: "v4", Slug: "fun", Label: "Fun", Active: true},
		{ID: "v9", Slug: "retired", Label: "Retired", Active: false},
	}
	for _, v := range values {
		if err := env.catalog.CreateValue(v); err != nil {
			t.Fatalf("CreateValue(%s) error = %v", v.ID, err)
		}
	}
	missions := []models.Mission{
		{ID: "m1", Slug: "innovation", Label: "Innovation Project", Active: true},
		{ID: "m2", Slug: "robot-game", Label: "Robot Game", Active: true},
		{ID: "m9", Slug: "old", Label: "Old Mission", Active: false},
	}
	for _, m := range missions {
		if err := env.catalog.CreateMission(m); err != nil {
			t.Fatalf("CreateMission(%s) error = %v", m.ID, err)
		}
	}
}

func TestSaveValueSelectionsValidation(t *testing.T) {
	tests := []struct {
		name     string
		picks    []ValuePick
		expected error
	}{
		{
			name:     "empty value id",
			picks:    []ValuePick{{ValueID: "  ", CoinWeight: 1}},
			expected: ErrBadPayload,
		},
		{
			name:     "unknown value",
			picks:    []ValuePick{{ValueID: "nope", CoinWeight: 1}},
			expected: ErrUnknownValue,
		},
		{
			name:     "inactive value",
			picks:    []ValuePick{{ValueID: "v9", CoinWeight: 1}},
			expected: ErrUnknownValue,
		},
		{
			name: "duplicate value",
			picks: []ValuePick{
				{ValueID: "v1", CoinWeight: 1},
				{ValueID: "v1", CoinWeight: 2},
			},
			expected: ErrDuplicateValue,
		},
		{
			name: "too many picks",
			picks: []ValuePick{
				{ValueID: "v1", CoinWeight: 1},
				{ValueID: "v2", CoinWeight: 1},
				{ValueID: "v3", CoinWeight: 1},
				{ValueID: "v4", CoinWeight: 1},
			},
			expected: ErrTooManySelections,
		},
		{
			name: "coin budget exceeded",
			picks: []ValuePick{
				{ValueID: "v1", CoinWeight: 3},
				{ValueID: "v2", CoinWeight: 3},
			},
			expected: ErrCoinBudgetExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			seedCatalog(t, env)
			svc := NewSelectionService(env.selections, env.catalog)

			_, err := svc.SaveValueSelections("u1", "c1", tt.picks)
			if !errors.Is(err, tt.expected) {
				t.Errorf("SaveValueSelections() error = %v, want %v", err, tt.expected)
			}

			stored, _ := svc.GetValueSelections("u1", "c1")
			if len(stored) != 0 {
				t.Errorf("expected rejected submission to store nothing, got %d rows", len(stored))
			}
		})
	}
}

func TestSaveValueSelectionsClampsWeights(t *testing.T) {
	env := newTestEnv()
	seedCatalog(t, env)
	svc := NewSelectionService(env.selections, env.catalog)

	rows, err := svc.SaveValueSelections("u1", "c1", []ValuePick{
		{ValueID: "v1", CoinWeight: -3},
		{ValueID: "v2", CoinWeight: 9},
	})
	if err != nil {
		t.Fatalf("SaveValueSelections() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].CoinWeight != 0 {
		t.Errorf("expected negative weight clamped to 0, got %d", rows[0].CoinWeight)
	}
	if rows[1].CoinWeight != MaxCoinWeight {
		t.Errorf("expected oversized weight clamped to %d, got %d", MaxCoinWeight, rows[1].CoinWeight)
	}
}

func TestSaveValueSelectionsBudgetUsesClampedWeights(t *testing.T) {
	env := newTestEnv()
	seedCatalog(t, env)
	svc := NewSelectionService(env.selections, env.catalog)

	// 9 clamps to 5, which alone fills the budget; adding 1 tips over.
	_, err := svc.SaveValueSelections("u1", "c1", []ValuePick{
		{ValueID: "v1", CoinWeight: 9},
		{ValueID: "v2", CoinWeight: 1},
	})
	if !errors.Is(err, ErrCoinBudgetExceeded) {
		t.Errorf("expected ErrCoinBudgetExceeded, got %v", err)
	}
}

func TestSaveValueSelectionsReplacesPriorSubmission(t *testing.T) {
	env := newTestEnv()
	seedCatalog(t, env)
	svc := NewSelectionService(env.selections, env.catalog)

	first, err := svc.SaveValueSelections("u1", "c1", []ValuePick{
		{ValueID: "v1", CoinWeight: 3},
		{ValueID: "v2", CoinWeight: 2},
	})
	if err != nil {
		t.Fatalf("first SaveValueSelections() error = %v", err)
	}

	var keptID string
	for _, r := range first {
		if r.ValueID == "v2" {
			keptID = r.ID
		}
	}

	second, err := svc.SaveValueSelections("u1", "c1", []ValuePick{
		{ValueID: "v2", CoinWeight: 2},
		{ValueID: "v3", CoinWeight: 3},
	})
	if err != nil {
		t.Fatalf("second SaveValueSelections() error = %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(second))
	}

	stored, err := svc.GetValueSelections("u1", "c1")
	if err != nil {
		t.Fatalf("GetValueSelections() error = %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected exactly 2 stored rows after replacement, got %d", len(stored))
	}
	for _, r := range stored {
		switch r.ValueID {
		case "v1":
			t.Error("expected v1 to be dropped")
		case "v2":
			if r.ID != keptID {
				t.Errorf("expected the surviving pick to keep its row id %s, got %s", keptID, r.ID)
			}
		}
	}
}

func TestSaveValueSelectionsScopedToUserAndClass(t *testing.T) {
	env := newTestEnv()
	seedCatalog(t, env)
	svc := NewSelectionService(env.selections, env.catalog)

	if _, err := svc.SaveValueSelections("u1", "c1", []ValuePick{{ValueID: "v1", CoinWeight: 2}}); err != nil {
		t.Fatalf("SaveValueSelections() error = %v", err)
	}
	if _, err := svc.SaveValueSelections("u2", "c1", []ValuePick{{ValueID: "v2", CoinWeight: 2}}); err != nil {
		t.Fatalf("SaveValueSelections() error = %v", err)
	}
	if _, err := svc.SaveValueSelections("u1", "c2", []ValuePick{{ValueID: "v3", CoinWeight: 2}}); err != nil {
		t.Fatalf("SaveValueSelections() error = %v", err)
	}

	// Replacing u1/c1 must not disturb the other user's or class's rows.
	if _, err := svc.SaveValueSelections("u1", "c1", []ValuePick{{ValueID: "v4", CoinWeight: 1}}); err != nil {
		t.Fatalf("SaveValueSelections() error = %v", err)
	}

	other, _ := svc.GetValueSelections("u2", "c1")
	if len(other) != 1 || other[0].ValueID != "v2" {
		t.Errorf("expected u2's pick untouched, got %v", other)
	}
	otherClass, _ := svc.GetValueSelections("u1", "c2")
	if len(otherClass) != 1 || otherClass[0].ValueID != "v3" {
		t.Errorf("expected u1's pick in c2 untouched, got %v", otherClass)
	}
}

func TestSelectMission(t *testing.T) {
	env := newTestEnv()
	seedCatalog(t, env)
	if err := env.catalog.SetClassMissions("c1", []string{"m1"}); err != nil {
		t.Fatalf("SetClassMissions() error = %v", err)
	}
	svc := NewSelectionService(env.selections, env.catalog)

	tests := []struct {
		name      string
		missionID string
		expected  error
	}{
		{"blank mission", "", ErrBadPayload},
		{"unknown mission", "zzz", ErrUnknownValue},
		{"inactive mission", "m9", ErrUnknownValue},
		{"active but not allowed for the class", "m2", ErrMissionNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SelectMission("u1", "c1", tt.missionID)
			if !errors.Is(err, tt.expected) {
				t.Errorf("SelectMission(%q) error = %v, want %v", tt.missionID, err, tt.expected)
			}
		})
	}

	ms, err := svc.SelectMission("u1", "c1", "m1")
	if err != nil {
		t.Fatalf("SelectMission() error = %v", err)
	}
	if ms.MissionID != "m1" {
		t.Errorf("expected mission m1, got %q", ms.MissionID)
	}
}

func TestSelectMissionReplacesKeepingRowID(t *testing.T) {
	env := newTestEnv()
	seedCatalog(t, env)
	if err := env.catalog.SetClassMissions("c1", []string{"m1", "m2"}); err != nil {
		t.Fatalf("SetClassMissions() error = %v", err)
	}
	svc := NewSelectionService(env.selections, env.catalog)

	first, err := svc.SelectMission("u1", "c1", "m1")
	if err != nil {
		t.Fatalf("SelectMission() error = %v", err)
	}
	second, err := svc.SelectMission("u1", "c1", "m2")
	if err != nil {
		t.Fatalf("SelectMission() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected the replacement to reuse row id %s, got %s", first.ID, second.ID)
	}

	stored, err := svc.GetMissionSelection("u1", "c1")
	if err != nil {
		t.Fatalf("GetMissionSelection() error = %v", err)
	}
	if stored == nil || stored.MissionID != "m2" {
		t.Fatalf("expected stored mission m2, got %v", stored)
	}
}
