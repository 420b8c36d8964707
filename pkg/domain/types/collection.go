package types

import "github.com/m-mizutani/goerr/v2"

// Collection names one of the four record collections of a dashboard session
type Collection string

const (
	CollectionRisks           Collection = "risks"
	CollectionVulnerabilities Collection = "vulnerabilities"
	CollectionTasks           Collection = "tasks"
	CollectionRecommendations Collection = "recommendations"
)

// AllCollections returns all collections in dashboard tab order
func AllCollections() []Collection {
	return []Collection{
		CollectionRisks,
		CollectionVulnerabilities,
		CollectionTasks,
		CollectionRecommendations,
	}
}

// IsValid checks if the collection is valid
func (c Collection) IsValid() bool {
	switch c {
	case CollectionRisks,
		CollectionVulnerabilities,
		CollectionTasks,
		CollectionRecommendations:
		return true
	default:
		return false
	}
}

// Filterable reports whether the collection supports a priority filter
func (c Collection) Filterable() bool {
	return c == CollectionRecommendations
}

// String returns the string representation of the collection
func (c Collection) String() string {
	return string(c)
}

// ParseCollection parses a string into a Collection
func ParseCollection(s string) (Collection, error) {
	c := Collection(s)
	if !c.IsValid() {
		return "", goerr.Wrap(ErrInvalidValue, "invalid collection", goerr.V("value", s))
	}
	return c, nil
}
