package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/posture/pkg/domain/types"
)

// Recommendation is one row of the security recommendations table
type Recommendation struct {
	ID                  types.RecordID
	Text                string
	Priority            types.Priority             `validate:"enum"`
	Status              types.RecommendationStatus `validate:"enum"`
	EstimatedCompletion types.Date
}

// RecordID returns the durable ID of the recommendation
func (r Recommendation) RecordID() types.RecordID {
	return r.ID
}

// Validate checks the text, priority, status and completion date. Empty or
// blank text fails with ErrEmptyText.
func (r Recommendation) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return goerr.Wrap(ErrEmptyText, "recommendation rejected", goerr.V(FieldKey, "Text"))
	}
	if err := validateRecord(r); err != nil {
		return err
	}
	if r.EstimatedCompletion.IsZero() {
		return goerr.Wrap(ErrMissingDate, "estimated completion is required", goerr.V(FieldKey, "EstimatedCompletion"))
	}
	return nil
}
