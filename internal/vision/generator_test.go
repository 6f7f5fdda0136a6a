package vision

import (
	"errors"
	"strings"
	"testing"
)

func TestJoinNatural(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		expected string
	}{
		{"empty", nil, ""},
		{"one", []string{"Teamwork"}, "Teamwork"},
		{"two", []string{"Teamwork", "Fun"}, "Teamwork and Fun"},
		{"three", []string{"Teamwork", "Fun", "Discovery"}, "Teamwork, Fun and Discovery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinNatural(tt.names); got != tt.expected {
				t.Errorf("joinNatural() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFallbackPersonal(t *testing.T) {
	tests := []struct {
		name    string
		mission string
		values  []string
		want    []string
	}{
		{
			name:   "no choices at all",
			want:   []string{"what matters to me"},
			values: nil,
		},
		{
			name:    "values and mission",
			mission: "Robot Game",
			values:  []string{"Teamwork", "Fun"},
			want:    []string{"Teamwork and Fun", "Robot Game"},
		},
		{
			name:   "values without a mission",
			values: []string{"Discovery"},
			want:   []string{"Discovery", "everything our team builds"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackPersonal(tt.mission, tt.values)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("FallbackPersonal() = %q, want it to contain %q", got, w)
				}
			}
		})
	}
}

func TestFallbackCombined(t *testing.T) {
	got := FallbackCombined("Robotics", []string{"Teamwork", "Creativity"})
	if !strings.Contains(got, "Robotics") {
		t.Errorf("expected the class name, got %q", got)
	}
	if !strings.Contains(got, "Teamwork and Creativity") {
		t.Errorf("expected the top values, got %q", got)
	}

	got = FallbackCombined("", nil)
	if !strings.Contains(got, "teamwork") {
		t.Errorf("expected the default value, got %q", got)
	}
}

func TestPersonalPromptCarriesChoices(t *testing.T) {
	prompt := PersonalPrompt("Alice", "Robot Game", []string{"Teamwork", "Fun"})
	for _, want := range []string{"Alice", "Robot Game", "Teamwork, Fun"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}
}

func TestCombinedPromptCarriesValuesAndMission(t *testing.T) {
	prompt := CombinedPrompt("Robotics", []string{"Teamwork", "Creativity"}, "Robot Game")
	for _, want := range []string{"Robotics", "Teamwork, Creativity", "Robot Game", "first person plural"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to mention %q, got:\n%s", want, prompt)
		}
	}
}

func TestGenerateWithRetry(t *testing.T) {
	t.Run("first attempt succeeds", func(t *testing.T) {
		var budgets []int
		text, err := generateWithRetry(100, func(budget int) (string, bool, error) {
			budgets = append(budgets, budget)
			return "A short statement.", false, nil
		})
		if err != nil {
			t.Fatalf("generateWithRetry() error = %v", err)
		}
		if text != "A short statement." {
			t.Errorf("unexpected text %q", text)
		}
		if len(budgets) != 1 || budgets[0] != 100 {
			t.Errorf("expected one attempt at budget 100, got %v", budgets)
		}
	})

	t.Run("truncated response retried at double budget", func(t *testing.T) {
		var budgets []int
		text, err := generateWithRetry(100, func(budget int) (string, bool, error) {
			budgets = append(budgets, budget)
			if len(budgets) == 1 {
				return "A cut off stat", true, nil
			}
			return "A full statement.", false, nil
		})
		if err != nil {
			t.Fatalf("generateWithRetry() error = %v", err)
		}
		if text != "A full statement." {
			t.Errorf("expected the retried text, got %q", text)
		}
		if len(budgets) != 2 || budgets[0] != 100 || budgets[1] != 200 {
			t.Errorf("expected budgets [100 200], got %v", budgets)
		}
	})

	t.Run("truncated twice gives up", func(t *testing.T) {
		calls := 0
		_, err := generateWithRetry(100, func(budget int) (string, bool, error) {
			calls++
			return "still cut off", true, nil
		})
		if err == nil {
			t.Fatal("expected an error after two truncated attempts")
		}
		if calls != 2 {
			t.Errorf("expected exactly 2 attempts, got %d", calls)
		}
	})

	t.Run("attempt error propagates", func(t *testing.T) {
		wantErr := errors.New("model unavailable")
		_, err := generateWithRetry(100, func(budget int) (string, bool, error) {
			return "", false, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("expected the attempt error, got %v", err)
		}
	})

	t.Run("empty response is an error", func(t *testing.T) {
		_, err := generateWithRetry(100, func(budget int) (string, bool, error) {
			return "", false, nil
		})
		if err == nil {
			t.Error("expected an error for an empty response")
		}
	})

	t.Run("non-positive budget defaults", func(t *testing.T) {
		var got int
		if _, err := generateWithRetry(0, func(budget int) (string, bool, error) {
			got = budget
			return "ok", false, nil
		}); err != nil {
			t.Fatalf("generateWithRetry() error = %v", err)
		}
		if got != 256 {
			t.Errorf("expected default budget 256, got %d", got)
		}
	})
}
