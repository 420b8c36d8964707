package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/posture/pkg/domain/types"
)

// Vulnerability is one row of the vulnerability analysis table.
// DiscoveryDate is stamped when the vulnerability is added and never changes.
type Vulnerability struct {
	ID            types.RecordID
	Name          string
	Severity      types.Severity            `validate:"enum"`
	Status        types.VulnerabilityStatus `validate:"enum"`
	DiscoveryDate types.Date
}

// RecordID returns the durable ID of the vulnerability
func (v Vulnerability) RecordID() types.RecordID {
	return v.ID
}

// Validate checks severity, status and that a discovery date is set
func (v Vulnerability) Validate() error {
	if err := validateRecord(v); err != nil {
		return err
	}
	if v.DiscoveryDate.IsZero() {
		return goerr.Wrap(ErrMissingDate, "discovery date is required", goerr.V(FieldKey, "DiscoveryDate"))
	}
	return nil
}
