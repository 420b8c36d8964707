package model

import (
	"slices"
	"time"

	"github.com/secmon-lab/posture/pkg/domain/types"
)

// Row is a record together with its zero-based position in its collection at
// the time the dashboard was rendered
type Row[T any] struct {
	Position int
	Record   T
}

// Snapshot is a point-in-time copy of the four collections of a session
type Snapshot struct {
	Risks           []RiskCategory
	Vulnerabilities []Vulnerability
	Tasks           []PhaseTask
	Recommendations []Recommendation
}

// ViewState is the per-session state that shapes the rendered view but is not
// a record
type ViewState struct {
	Filter         PriorityFilter
	SelectedSystem string
	HeadlineMode   types.HeadlineMode
}

// PhaseGroup is one phase of the implementation timeline
type PhaseGroup struct {
	Phase   types.Phase
	Label   string
	Average float64
	Tasks   []Row[PhaseTask]
}

// Dashboard is the render model handed to a renderer. It carries everything
// needed to draw tables, charts and progress bars without further logic.
type Dashboard struct {
	SessionID      types.SessionID
	Version        uint64
	RenderedAt     time.Time
	Info           DashboardInfo
	SelectedSystem string

	Risks    []Row[RiskCategory]
	Headline HeadlineMetrics

	Vulnerabilities []Row[Vulnerability]
	SeverityBuckets []Bucket
	StatusBuckets   []Bucket

	Phases    []PhaseGroup
	TaskCount int

	Recommendations     []Row[Recommendation]
	RecommendationTotal int
	Filter              []types.Priority
}

func rows[T any](records []T) []Row[T] {
	out := make([]Row[T], len(records))
	for i, r := range records {
		out[i] = Row[T]{Position: i, Record: r}
	}
	return out
}

// BuildDashboard derives the render model from a snapshot. Aggregates and the
// recommendation projection are recomputed on every call.
func BuildDashboard(snap *Snapshot, info DashboardInfo, state ViewState) *Dashboard {
	// info is shared by every session
	info.Team = slices.Clone(info.Team)
	info.Systems = slices.Clone(info.Systems)

	d := &Dashboard{
		Info:            info,
		SelectedSystem:  state.SelectedSystem,
		Risks:           rows(snap.Risks),
		Headline:        Headline(state.HeadlineMode, info.Headline, snap.Risks, snap.Vulnerabilities),
		Vulnerabilities: rows(snap.Vulnerabilities),
		SeverityBuckets: SeverityBuckets(snap.Vulnerabilities),
		StatusBuckets:   StatusBuckets(snap.Vulnerabilities),
		TaskCount:       len(snap.Tasks),
		Filter:          state.Filter.Values(),
	}

	taskRows := rows(snap.Tasks)
	for _, summary := range PhaseProgress(snap.Tasks) {
		group := PhaseGroup{
			Phase:   summary.Phase,
			Label:   summary.Phase.Label(),
			Average: summary.Average,
			Tasks:   []Row[PhaseTask]{},
		}
		for _, row := range taskRows {
			if row.Record.Phase == summary.Phase {
				group.Tasks = append(group.Tasks, row)
			}
		}
		d.Phases = append(d.Phases, group)
	}

	d.Recommendations = Project(rows(snap.Recommendations), state.Filter, func(r Row[Recommendation]) types.Priority {
		return r.Record.Priority
	})
	d.RecommendationTotal = len(snap.Recommendations)

	return d
}
