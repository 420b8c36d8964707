package types

import "github.com/m-mizutani/goerr/v2"

// HeadlineMode selects how the headline metrics of the risk tab are produced
type HeadlineMode string

const (
	// HeadlineModeStatic shows the configured display values regardless of the records
	HeadlineModeStatic HeadlineMode = "static"
	// HeadlineModeDerived recomputes the risk score and critical count from the records
	HeadlineModeDerived HeadlineMode = "derived"
)

// IsValid checks if the headline mode is valid
func (m HeadlineMode) IsValid() bool {
	switch m {
	case HeadlineModeStatic, HeadlineModeDerived:
		return true
	default:
		return false
	}
}

// String returns the string representation of the headline mode
func (m HeadlineMode) String() string {
	return string(m)
}

// ParseHeadlineMode parses a string into a HeadlineMode
func ParseHeadlineMode(s string) (HeadlineMode, error) {
	m := HeadlineMode(s)
	if !m.IsValid() {
		return "", goerr.Wrap(ErrInvalidValue, "invalid headline mode", goerr.V("value", s))
	}
	return m, nil
}
