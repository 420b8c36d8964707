package model

import "github.com/secmon-lab/posture/pkg/domain/types"

// PhaseTask is a remediation task tracked on the implementation timeline.
// Grouping by phase is derived at render time.
type PhaseTask struct {
	ID       types.RecordID
	Phase    types.Phase `validate:"enum"`
	TaskName string
	Progress int `validate:"min=0,max=100"`
}

// RecordID returns the durable ID of the task
func (t PhaseTask) RecordID() types.RecordID {
	return t.ID
}

// Validate checks the phase and progress range
func (t PhaseTask) Validate() error {
	return validateRecord(t)
}
