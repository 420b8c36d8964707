package model

import "github.com/secmon-lab/posture/pkg/domain/types"

// RiskCategory is one bar of the risk assessment chart
type RiskCategory struct {
	ID        types.RecordID
	Name      string         `validate:"required"`
	RiskScore int            `validate:"min=0,max=100"`
	Priority  types.Priority `validate:"enum"`
}

// RecordID returns the durable ID of the risk category
func (r RiskCategory) RecordID() types.RecordID {
	return r.ID
}

// Validate checks the name, score range and priority
func (r RiskCategory) Validate() error {
	return validateRecord(r)
}
