package types

import "github.com/m-mizutani/goerr/v2"

// VulnerabilityStatus represents the remediation state of a vulnerability
type VulnerabilityStatus string

const (
	VulnerabilityStatusOpen       VulnerabilityStatus = "Open"
	VulnerabilityStatusInProgress VulnerabilityStatus = "In Progress"
	VulnerabilityStatusResolved   VulnerabilityStatus = "Resolved"
)

// AllVulnerabilityStatuses returns all valid vulnerability statuses
func AllVulnerabilityStatuses() []VulnerabilityStatus {
	return []VulnerabilityStatus{
		VulnerabilityStatusOpen,
		VulnerabilityStatusInProgress,
		VulnerabilityStatusResolved,
	}
}

// IsValid checks if the vulnerability status is valid
func (s VulnerabilityStatus) IsValid() bool {
	switch s {
	case VulnerabilityStatusOpen,
		VulnerabilityStatusInProgress,
		VulnerabilityStatusResolved:
		return true
	default:
		return false
	}
}

// Color returns the pie chart colour for the status
func (s VulnerabilityStatus) Color() string {
	switch s {
	case VulnerabilityStatusOpen:
		return "#ff4b4b"
	case VulnerabilityStatusResolved:
		return "#36b37e"
	case VulnerabilityStatusInProgress:
		return "#ffeb3b"
	default:
		return ""
	}
}

// String returns the string representation of the vulnerability status
func (s VulnerabilityStatus) String() string {
	return string(s)
}

// ParseVulnerabilityStatus parses a string into a VulnerabilityStatus
func ParseVulnerabilityStatus(s string) (VulnerabilityStatus, error) {
	status := VulnerabilityStatus(s)
	if !status.IsValid() {
		return "", goerr.Wrap(ErrInvalidValue, "invalid vulnerability status", goerr.V("value", s))
	}
	return status, nil
}
