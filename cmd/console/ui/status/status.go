// Package status normalizes run and pass status strings for display.
package status

import "strings"

const (
	Pending   = "pending"
	Running   = "running"
	Converged = "converged"
	Warning   = "warning"
	Failed    = "failed"
	Skipped   = "skipped"
	Completed = "completed"
)

// Normalize returns a lower-cased, trimmed status value.
func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// IsTerminal reports whether a status indicates the row finished.
func IsTerminal(value string) bool {
	switch Normalize(value) {
	case Converged, Warning, Failed, Skipped, Completed:
		return true
	default:
		return false
	}
}

// Color returns the lipgloss color code used to badge a status.
func Color(value string) string {
	switch Normalize(value) {
	case Converged, Completed:
		return "42"
	case Warning:
		return "214"
	case Failed:
		return "196"
	case Running:
		return "63"
	case Skipped:
		return "244"
	default:
		return "240"
	}
}
