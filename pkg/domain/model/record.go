package model

import "github.com/secmon-lab/posture/pkg/domain/types"

// Record is implemented by the four record kinds held in a dashboard session
type Record interface {
	RiskCategory | Vulnerability | PhaseTask | Recommendation
	RecordID() types.RecordID
	Validate() error
}
