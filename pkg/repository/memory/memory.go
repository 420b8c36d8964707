package memory

import (
	"github.com/secmon-lab/posture/pkg/domain/interfaces"
	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory holds the four collections of one session in process memory.
// Nothing is written anywhere; the data is gone when the value is dropped.
type Memory struct {
	risk           *collection[model.RiskCategory]
	vulnerability  *collection[model.Vulnerability]
	task           *collection[model.PhaseTask]
	recommendation *collection[model.Recommendation]
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		risk: newCollection(types.CollectionRisks, func(r model.RiskCategory, id types.RecordID) model.RiskCategory {
			r.ID = id
			return r
		}),
		vulnerability: newCollection(types.CollectionVulnerabilities, func(v model.Vulnerability, id types.RecordID) model.Vulnerability {
			v.ID = id
			return v
		}),
		task: newCollection(types.CollectionTasks, func(t model.PhaseTask, id types.RecordID) model.PhaseTask {
			t.ID = id
			return t
		}),
		recommendation: newCollection(types.CollectionRecommendations, func(r model.Recommendation, id types.RecordID) model.Recommendation {
			r.ID = id
			return r
		}),
	}
}

func (m *Memory) Risk() interfaces.CollectionRepository[model.RiskCategory] {
	return m.risk
}

func (m *Memory) Vulnerability() interfaces.CollectionRepository[model.Vulnerability] {
	return m.vulnerability
}

func (m *Memory) Task() interfaces.CollectionRepository[model.PhaseTask] {
	return m.task
}

func (m *Memory) Recommendation() interfaces.CollectionRepository[model.Recommendation] {
	return m.recommendation
}
