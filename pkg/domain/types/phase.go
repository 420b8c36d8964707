package types

import "github.com/m-mizutani/goerr/v2"

// Phase represents a remediation timeline phase
type Phase string

const (
	PhaseImmediate Phase = "Immediate"
	PhaseShortTerm Phase = "Short-term"
	PhaseLongTerm  Phase = "Long-term"
)

// AllPhases returns all valid phases in timeline order
func AllPhases() []Phase {
	return []Phase{
		PhaseImmediate,
		PhaseShortTerm,
		PhaseLongTerm,
	}
}

// IsValid checks if the phase is valid
func (p Phase) IsValid() bool {
	switch p {
	case PhaseImmediate,
		PhaseShortTerm,
		PhaseLongTerm:
		return true
	default:
		return false
	}
}

// Label returns the display heading of the phase including its time window
func (p Phase) Label() string {
	switch p {
	case PhaseImmediate:
		return "Immediate (0-30 days)"
	case PhaseShortTerm:
		return "Short-term (1-3 months)"
	case PhaseLongTerm:
		return "Long-term (3-12 months)"
	default:
		return string(p)
	}
}

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// ParsePhase parses a string into a Phase
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.IsValid() {
		return "", goerr.Wrap(ErrInvalidValue, "invalid phase", goerr.V("value", s))
	}
	return p, nil
}
