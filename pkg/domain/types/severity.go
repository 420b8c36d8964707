package types

import "github.com/m-mizutani/goerr/v2"

// Severity represents how damaging a vulnerability is
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
)

// AllSeverities returns all valid severities, most severe first
func AllSeverities() []Severity {
	return []Severity{
		SeverityCritical,
		SeverityHigh,
		SeverityMedium,
	}
}

// IsValid checks if the severity is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical,
		SeverityHigh,
		SeverityMedium:
		return true
	default:
		return false
	}
}

// Color returns the pie chart colour for the severity
func (s Severity) Color() string {
	switch s {
	case SeverityCritical:
		return "#ff4b4b"
	case SeverityHigh:
		return "#ffa600"
	case SeverityMedium:
		return "#ffeb3b"
	default:
		return ""
	}
}

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a string into a Severity
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.IsValid() {
		return "", goerr.Wrap(ErrInvalidValue, "invalid severity", goerr.V("value", s))
	}
	return sev, nil
}
