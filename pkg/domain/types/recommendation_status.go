package types

import "github.com/m-mizutani/goerr/v2"

// RecommendationStatus represents how far a recommendation has been carried out
type RecommendationStatus string

const (
	RecommendationStatusPlanned    RecommendationStatus = "Planned"
	RecommendationStatusInProgress RecommendationStatus = "In Progress"
	RecommendationStatusCompleted  RecommendationStatus = "Completed"
)

// AllRecommendationStatuses returns all valid recommendation statuses
func AllRecommendationStatuses() []RecommendationStatus {
	return []RecommendationStatus{
		RecommendationStatusPlanned,
		RecommendationStatusInProgress,
		RecommendationStatusCompleted,
	}
}

// IsValid checks if the recommendation status is valid
func (s RecommendationStatus) IsValid() bool {
	switch s {
	case RecommendationStatusPlanned,
		RecommendationStatusInProgress,
		RecommendationStatusCompleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the recommendation status
func (s RecommendationStatus) String() string {
	return string(s)
}

// ParseRecommendationStatus parses a string into a RecommendationStatus
func ParseRecommendationStatus(s string) (RecommendationStatus, error) {
	status := RecommendationStatus(s)
	if !status.IsValid() {
		return "", goerr.Wrap(ErrInvalidValue, "invalid recommendation status", goerr.V("value", s))
	}
	return status, nil
}
