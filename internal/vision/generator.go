// Package vision turns a student's chosen values and mission into a
// short motivating statement, either via a language model or a
// deterministic fallback.
package vision

import (
	"context"
	"fmt"
	"strings"
)

// Generator produces a vision statement from a prompt. budget is the
// output token limit the backend should respect.
type Generator interface {
	Generate(ctx context.Context, prompt string, budget int) (string, error)
}

// PersonalPrompt builds the model prompt for one student's vision text
func PersonalPrompt(displayName, missionName string, valueNames []string) string {
	var b strings.Builder
	b.WriteString("Write a short, first-person vision statement for a robotics student.\n")
	b.WriteString("Keep it to two or three sentences, encouraging and concrete.\n")
	if displayName != "" {
		fmt.Fprintf(&b, "Student name: %s\n", displayName)
	}
	if missionName != "" {
		fmt.Fprintf(&b, "Chosen mission: %s\n", missionName)
	}
	if len(valueNames) > 0 {
		fmt.Fprintf(&b, "Values they picked: %s\n", strings.Join(valueNames, ", "))
	}
	b.WriteString("Do not use markdown or headings, return plain prose only.")
	return b.String()
}

// CombinedPrompt builds the model prompt for a shared vision text from
// the values a group of students spent the most coins on.
func CombinedPrompt(className string, valueNames []string, missionName string) string {
	var b strings.Builder
	b.WriteString("Write a short shared vision statement in the first person plural\n")
	b.WriteString("for a group of robotics students, three sentences at most.\n")
	if className != "" {
		fmt.Fprintf(&b, "Class: %s\n", className)
	}
	if missionName != "" {
		fmt.Fprintf(&b, "Their mission: %s\n", missionName)
	}
	if len(valueNames) > 0 {
		fmt.Fprintf(&b, "The values they care about most: %s\n", strings.Join(valueNames, ", "))
	}
	b.WriteString("Do not use markdown or headings, return plain prose only.")
	return b.String()
}

// FallbackPersonal builds a deterministic vision sentence when no model
// is configured or the model call fails.
func FallbackPersonal(missionName string, valueNames []string) string {
	values := "what matters to me"
	if len(valueNames) > 0 {
		values = joinNatural(valueNames)
	}
	if missionName == "" {
		return fmt.Sprintf("I will bring %s to everything our team builds this season.", values)
	}
	return fmt.Sprintf("I will bring %s to our work on %s this season.", values, missionName)
}

// FallbackCombined builds a deterministic class vision from the value
// names most chosen across the class.
func FallbackCombined(className string, topValues []string) string {
	values := "teamwork"
	if len(topValues) > 0 {
		values = joinNatural(topValues)
	}
	if className == "" {
		return fmt.Sprintf("Together we build with %s at the center of everything we do.", values)
	}
	return fmt.Sprintf("In %s we build with %s at the center of everything we do.", className, values)
}

func joinNatural(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
