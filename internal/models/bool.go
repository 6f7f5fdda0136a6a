package models

import "strings"

// ParseFlexibleBool reads the truthy spellings that show up in
// spreadsheet cells: TRUE, 1, YES, ON, in any case. Everything else is
// false.
func ParseFlexibleBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "1", "YES", "ON":
		return true
	}
	return false
}

// FormatBool writes the spreadsheet spelling of a bool
func FormatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
