package health

import "encoding/json"

// Severity represents the urgency tier of a detected issue.
//
// Iota-based constants keep comparisons and sorting cheap; the String()
// method provides human-readable output when needed.
type Severity int

const (
	// SeverityWarning indicates a score between the critical and issue
	// thresholds. Worth fixing, not urgent.
	SeverityWarning Severity = iota

	// SeverityCritical indicates a score below the critical threshold.
	// Critical issues always rank ahead of warnings.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON encodes the severity as its string form; the numeric values
// are an internal ordering detail, not part of the report contract.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the string form produced by MarshalJSON.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	if text == "CRITICAL" {
		*s = SeverityCritical
	} else {
		*s = SeverityWarning
	}
	return nil
}
