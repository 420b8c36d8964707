package types

import "github.com/m-mizutani/goerr/v2"

// ErrInvalidValue is returned when a string does not name a member of a closed enum
var ErrInvalidValue = goerr.New("invalid enum value")

// Priority represents the urgency of a risk category or recommendation
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
)

// AllPriorities returns all valid priorities, most urgent first
func AllPriorities() []Priority {
	return []Priority{
		PriorityCritical,
		PriorityHigh,
		PriorityMedium,
	}
}

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityCritical,
		PriorityHigh,
		PriorityMedium:
		return true
	default:
		return false
	}
}

// Rank returns the sort rank of the priority. Lower is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// Color returns the bar chart colour for the priority
func (p Priority) Color() string {
	switch p {
	case PriorityCritical:
		return "red"
	case PriorityHigh:
		return "orange"
	case PriorityMedium:
		return "yellow"
	default:
		return ""
	}
}

// Highlight returns the table cell background for the priority, or empty when
// the priority is not highlighted
func (p Priority) Highlight() string {
	switch p {
	case PriorityCritical:
		return "#ffcdd2"
	case PriorityHigh:
		return "#ffe0b2"
	default:
		return ""
	}
}

// String returns the string representation of the priority
func (p Priority) String() string {
	return string(p)
}

// ParsePriority parses a string into a Priority
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", goerr.Wrap(ErrInvalidValue, "invalid priority", goerr.V("value", s))
	}
	return p, nil
}

// ParsePriorities parses every string into a Priority, failing on the first
// invalid one
func ParsePriorities(values []string) ([]Priority, error) {
	out := make([]Priority, 0, len(values))
	for _, v := range values {
		p, err := ParsePriority(v)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
