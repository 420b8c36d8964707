package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/posture/pkg/domain/interfaces"
	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
	"github.com/secmon-lab/posture/pkg/repository/memory"
	"github.com/secmon-lab/posture/pkg/usecase"
)

func newRepo() interfaces.Repository {
	return memory.New()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.December, 6, 9, 30, 0, 0, time.UTC)}
}

type recorder struct {
	mu     sync.Mutex
	events []*interfaces.RenderEvent
}

func (r *recorder) OnRender(ctx context.Context, event *interfaces.RenderEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) last() *interfaces.RenderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func setup(t *testing.T, opts ...usecase.Option) (*usecase.DashboardUseCase, types.SessionID) {
	t.Helper()
	uc := usecase.New(newRepo, opts...)
	d, err := uc.Dashboard.InitSession(context.Background())
	gt.NoError(t, err).Required()
	return uc.Dashboard, d.SessionID
}

func TestDashboardUseCase_InitSession(t *testing.T) {
	uc, sid := setup(t)
	ctx := context.Background()

	d, err := uc.Render(ctx, sid)
	gt.NoError(t, err).Required()

	gt.Array(t, d.Risks).Length(4)
	gt.Array(t, d.Vulnerabilities).Length(4)
	gt.Value(t, d.TaskCount).Equal(9)
	gt.Value(t, d.RecommendationTotal).Equal(5)
	gt.Array(t, d.Recommendations).Length(4)
	gt.Value(t, d.Filter).Equal([]types.Priority{types.PriorityCritical, types.PriorityHigh})
	gt.Value(t, d.SelectedSystem).Equal("Network Infrastructure")
	gt.Value(t, d.Version).Equal(uint64(0))

	t.Run("sessions do not share records", func(t *testing.T) {
		other, err := uc.InitSession(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, other.SessionID).NotEqual(sid)

		_, err = uc.DeleteAt(ctx, sid, types.CollectionRisks, 0, "")
		gt.NoError(t, err).Required()

		again, err := uc.Render(ctx, other.SessionID)
		gt.NoError(t, err).Required()
		gt.Array(t, again.Risks).Length(4)
		gt.Value(t, again.Risks[0].Record.ID).NotEqual(d.Risks[0].Record.ID)
	})
}

func TestDashboardUseCase_AddRiskCategory(t *testing.T) {
	uc, sid := setup(t)
	ctx := context.Background()

	input := model.RiskCategory{Name: "Cloud Security", RiskScore: 60, Priority: types.PriorityHigh}
	m, err := uc.AddRiskCategory(ctx, sid, input)
	gt.NoError(t, err).Required()

	gt.NoError(t, m.Record.ID.Validate())
	gt.String(t, m.Message).Contains("Cloud Security")
	gt.Array(t, m.Dashboard.Risks).Length(5)

	last := m.Dashboard.Risks[4]
	gt.Value(t, last.Position).Equal(4)
	gt.Value(t, last.Record.Name).Equal("Cloud Security")
	gt.Value(t, last.Record.RiskScore).Equal(60)
	gt.Value(t, last.Record.Priority).Equal(types.PriorityHigh)
	gt.Value(t, m.Dashboard.Version).Equal(uint64(1))

	t.Run("out of range score is rejected", func(t *testing.T) {
		_, err := uc.AddRiskCategory(ctx, sid, model.RiskCategory{Name: "x", RiskScore: 101, Priority: types.PriorityHigh})
		gt.Error(t, err).Is(model.ErrInvalidRecord)

		d, err := uc.Render(ctx, sid)
		gt.NoError(t, err).Required()
		gt.Array(t, d.Risks).Length(5)
	})

	t.Run("caller supplied ID is ignored", func(t *testing.T) {
		given := types.NewRecordID()
		m, err := uc.AddRiskCategory(ctx, sid, model.RiskCategory{ID: given, Name: "OT", RiskScore: 40, Priority: types.PriorityMedium})
		gt.NoError(t, err).Required()
		gt.Value(t, m.Record.ID).NotEqual(given)
	})
}

func TestDashboardUseCase_AddVulnerability(t *testing.T) {
	clock := newClock()
	uc, sid := setup(t, usecase.WithClock(clock.Now))
	ctx := context.Background()

	m, err := uc.AddVulnerability(ctx, sid, model.Vulnerability{
		Name:          "Exposed RDP",
		Severity:      types.SeverityHigh,
		Status:        types.VulnerabilityStatusOpen,
		DiscoveryDate: types.NewDate(2020, time.January, 1),
	})
	gt.NoError(t, err).Required()

	gt.Value(t, m.Record.DiscoveryDate).Equal(types.NewDate(2024, time.December, 6))
	gt.Array(t, m.Dashboard.Vulnerabilities).Length(5)
	gt.Value(t, m.Dashboard.SeverityBuckets).Equal([]model.Bucket{
		{Label: "Critical", Color: "#ff4b4b", Count: 1},
		{Label: "High", Color: "#ffa600", Count: 1},
		{Label: "Medium", Color: "#ffeb3b", Count: 3},
	})

	t.Run("invalid severity", func(t *testing.T) {
		_, err := uc.AddVulnerability(ctx, sid, model.Vulnerability{Name: "x", Severity: "Low", Status: types.VulnerabilityStatusOpen})
		gt.Error(t, err).Is(model.ErrInvalidRecord)
	})
}

func TestDashboardUseCase_AddPhaseTask(t *testing.T) {
	uc, sid := setup(t)
	ctx := context.Background()

	m, err := uc.AddPhaseTask(ctx, sid, model.PhaseTask{Phase: types.PhaseLongTerm, TaskName: "Tabletop exercise", Progress: 55})
	gt.NoError(t, err).Required()

	gt.Value(t, m.Dashboard.TaskCount).Equal(10)
	longTerm := m.Dashboard.Phases[2]
	gt.Array(t, longTerm.Tasks).Length(4)
	gt.Value(t, longTerm.Average).Equal(25.0)
	gt.Value(t, longTerm.Tasks[3].Position).Equal(9)

	_, err = uc.AddPhaseTask(ctx, sid, model.PhaseTask{Phase: types.PhaseLongTerm, TaskName: "x", Progress: -5})
	gt.Error(t, err).Is(model.ErrInvalidRecord)
}

func TestDashboardUseCase_AddRecommendation(t *testing.T) {
	rec := &recorder{}
	uc, sid := setup(t, usecase.WithObserver(rec))
	ctx := context.Background()

	t.Run("empty text leaves collection unchanged", func(t *testing.T) {
		before := len(rec.events)

		_, err := uc.AddRecommendation(ctx, sid, model.Recommendation{
			Text:                "",
			Priority:            types.PriorityCritical,
			Status:              types.RecommendationStatusPlanned,
			EstimatedCompletion: types.NewDate(2025, time.February, 1),
		})
		gt.Error(t, err).Is(usecase.ErrEmptyText)

		d, err := uc.Render(ctx, sid)
		gt.NoError(t, err).Required()
		gt.Value(t, d.RecommendationTotal).Equal(5)
		gt.Value(t, len(rec.events)).Equal(before)
	})

	t.Run("appended and visible through default filter", func(t *testing.T) {
		m, err := uc.AddRecommendation(ctx, sid, model.Recommendation{
			Text:                "Encrypt backups",
			Priority:            types.PriorityHigh,
			Status:              types.RecommendationStatusPlanned,
			EstimatedCompletion: types.NewDate(2025, time.February, 1),
		})
		gt.NoError(t, err).Required()

		gt.Value(t, m.Dashboard.RecommendationTotal).Equal(6)
		gt.Array(t, m.Dashboard.Recommendations).Length(5)
		gt.Value(t, m.Dashboard.Recommendations[4].Position).Equal(5)
		gt.Value(t, rec.last().Intent).Equal(types.IntentAdd)
		gt.Value(t, rec.last().Collection).Equal(types.CollectionRecommendations)
	})

	t.Run("medium priority is hidden by default filter", func(t *testing.T) {
		m, err := uc.AddRecommendation(ctx, sid, model.Recommendation{
			Text:                "Review vendor contracts",
			Priority:            types.PriorityMedium,
			Status:              types.RecommendationStatusPlanned,
			EstimatedCompletion: types.NewDate(2025, time.March, 1),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, m.Dashboard.RecommendationTotal).Equal(7)
		gt.Array(t, m.Dashboard.Recommendations).Length(5)
	})
}

func TestDashboardUseCase_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("delete at position closes the gap", func(t *testing.T) {
		uc, sid := setup(t)
		before, err := uc.Render(ctx, sid)
		gt.NoError(t, err).Required()

		d, err := uc.DeleteAt(ctx, sid, types.CollectionTasks, 2, before.Phases[0].Tasks[2].Record.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, d.TaskCount).Equal(8)

		// Every task after position 2 moved up by one
		var all []model.Row[model.PhaseTask]
		for _, g := range d.Phases {
			all = append(all, g.Tasks...)
		}
		gt.Value(t, all[2].Position).Equal(2)
		gt.Value(t, all[2].Record.ID).Equal(before.Phases[1].Tasks[0].Record.ID)
		gt.Value(t, d.Phases[0].Average).Equal(87.5)
	})

	t.Run("removing the critical vulnerability", func(t *testing.T) {
		uc, sid := setup(t)

		d, err := uc.DeleteAt(ctx, sid, types.CollectionVulnerabilities, 0, "")
		gt.NoError(t, err).Required()

		gt.Array(t, d.Vulnerabilities).Length(3)
		gt.Value(t, d.SeverityBuckets).Equal([]model.Bucket{
			{Label: "Medium", Color: "#ffeb3b", Count: 3},
		})
	})

	t.Run("stale position fails and changes nothing", func(t *testing.T) {
		uc, sid := setup(t)
		view, err := uc.Render(ctx, sid)
		gt.NoError(t, err).Required()

		// Two deletes issued from the same render
		_, err = uc.DeleteAt(ctx, sid, types.CollectionRisks, 0, view.Risks[0].Record.ID)
		gt.NoError(t, err).Required()

		_, err = uc.DeleteAt(ctx, sid, types.CollectionRisks, 0, view.Risks[0].Record.ID)
		gt.Error(t, err).Is(usecase.ErrStalePosition)

		_, err = uc.DeleteAt(ctx, sid, types.CollectionRisks, 3, view.Risks[3].Record.ID)
		gt.Error(t, err).Is(usecase.ErrStalePosition)

		d, err := uc.Render(ctx, sid)
		gt.NoError(t, err).Required()
		gt.Array(t, d.Risks).Length(3)
	})

	t.Run("delete by ID", func(t *testing.T) {
		uc, sid := setup(t)
		view, err := uc.Render(ctx, sid)
		gt.NoError(t, err).Required()

		target := view.Recommendations[1].Record.ID
		d, err := uc.DeleteRecord(ctx, sid, types.CollectionRecommendations, target)
		gt.NoError(t, err).Required()
		gt.Value(t, d.RecommendationTotal).Equal(4)

		_, err = uc.DeleteRecord(ctx, sid, types.CollectionRecommendations, target)
		gt.Error(t, err).Is(usecase.ErrRecordNotFound)
	})

	t.Run("unknown collection", func(t *testing.T) {
		uc, sid := setup(t)
		_, err := uc.DeleteAt(ctx, sid, types.Collection("incidents"), 0, "")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})
}

func TestDashboardUseCase_SetFilter(t *testing.T) {
	uc, sid := setup(t)
	ctx := context.Background()

	t.Run("empty filter hides everything", func(t *testing.T) {
		d, err := uc.SetFilter(ctx, sid, types.CollectionRecommendations, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, d.Recommendations).Length(0)
		gt.Value(t, d.RecommendationTotal).Equal(5)
	})

	t.Run("medium only", func(t *testing.T) {
		d, err := uc.SetFilter(ctx, sid, types.CollectionRecommendations, []types.Priority{types.PriorityMedium})
		gt.NoError(t, err).Required()
		gt.Array(t, d.Recommendations).Length(1)
		gt.Value(t, d.Recommendations[0].Position).Equal(3)
	})

	t.Run("filter survives mutations", func(t *testing.T) {
		d, err := uc.DeleteAt(ctx, sid, types.CollectionRecommendations, 0, "")
		gt.NoError(t, err).Required()
		gt.Value(t, d.Filter).Equal([]types.Priority{types.PriorityMedium})
		gt.Value(t, d.Recommendations[0].Position).Equal(2)
	})

	t.Run("other collections are not filterable", func(t *testing.T) {
		_, err := uc.SetFilter(ctx, sid, types.CollectionRisks, []types.Priority{types.PriorityHigh})
		gt.Error(t, err).Is(usecase.ErrNotFilterable)
	})

	t.Run("invalid priority", func(t *testing.T) {
		_, err := uc.SetFilter(ctx, sid, types.CollectionRecommendations, []types.Priority{"Low"})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})
}

func TestDashboardUseCase_SelectSystem(t *testing.T) {
	uc, sid := setup(t)
	ctx := context.Background()

	d, err := uc.SelectSystem(ctx, sid, "IoT Devices")
	gt.NoError(t, err).Required()
	gt.Value(t, d.SelectedSystem).Equal("IoT Devices")
	gt.Array(t, d.Vulnerabilities).Length(4)

	_, err = uc.SelectSystem(ctx, sid, "Mainframe")
	gt.Error(t, err).Is(usecase.ErrUnknownSystem)

	t.Run("editing a render does not change the selectable systems", func(t *testing.T) {
		d.Info.Systems[1] = "Mainframe"

		_, err := uc.SelectSystem(ctx, sid, "Mainframe")
		gt.Error(t, err).Is(usecase.ErrUnknownSystem)
		d, err := uc.SelectSystem(ctx, sid, "Patient Records")
		gt.NoError(t, err).Required()
		gt.Value(t, d.Info.Systems[1]).Equal("Patient Records")
	})
}

func TestDashboardUseCase_HeadlineMode(t *testing.T) {
	ctx := context.Background()

	t.Run("static values do not follow records", func(t *testing.T) {
		uc, sid := setup(t)
		d, err := uc.DeleteAt(ctx, sid, types.CollectionVulnerabilities, 0, "")
		gt.NoError(t, err).Required()
		gt.Value(t, d.Headline.CriticalVulnerabilities.Value).Equal("3")
	})

	t.Run("derived values follow records", func(t *testing.T) {
		uc, sid := setup(t, usecase.WithHeadlineMode(types.HeadlineModeDerived))
		d, err := uc.DeleteAt(ctx, sid, types.CollectionVulnerabilities, 0, "")
		gt.NoError(t, err).Required()
		gt.Value(t, d.Headline.CriticalVulnerabilities.Value).Equal("0")
		gt.Value(t, d.Headline.OverallRiskScore.Value).Equal("71/100")
	})
}

func TestDashboardUseCase_Sessions(t *testing.T) {
	ctx := context.Background()

	t.Run("reset restores the seed", func(t *testing.T) {
		uc, sid := setup(t)
		_, err := uc.DeleteAt(ctx, sid, types.CollectionRisks, 0, "")
		gt.NoError(t, err).Required()
		_, err = uc.SetFilter(ctx, sid, types.CollectionRecommendations, nil)
		gt.NoError(t, err).Required()

		d, err := uc.ResetSession(ctx, sid)
		gt.NoError(t, err).Required()
		gt.Array(t, d.Risks).Length(4)
		gt.Array(t, d.Recommendations).Length(4)
	})

	t.Run("ended session is gone", func(t *testing.T) {
		rec := &recorder{}
		uc, sid := setup(t, usecase.WithObserver(rec))

		gt.NoError(t, uc.EndSession(ctx, sid)).Required()
		gt.Value(t, rec.last().Intent).Equal(types.IntentEnd)
		gt.Value(t, rec.last().Dashboard).Nil()

		_, err := uc.Render(ctx, sid)
		gt.Error(t, err).Is(usecase.ErrSessionNotFound)
		gt.Error(t, uc.EndSession(ctx, sid)).Is(usecase.ErrSessionNotFound)
	})

	t.Run("unknown session", func(t *testing.T) {
		uc, _ := setup(t)
		_, err := uc.AddRiskCategory(ctx, types.NewSessionID(), model.RiskCategory{Name: "x", RiskScore: 1, Priority: types.PriorityHigh})
		gt.Error(t, err).Is(usecase.ErrSessionNotFound)
	})

	t.Run("idle sessions are evicted", func(t *testing.T) {
		clock := newClock()
		uc, idle := setup(t, usecase.WithClock(clock.Now))

		clock.Advance(20 * time.Minute)
		active, err := uc.InitSession(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, uc.SessionCount()).Equal(2)

		clock.Advance(15 * time.Minute)
		gt.Value(t, uc.EvictIdle(ctx, 30*time.Minute)).Equal(1)
		gt.Value(t, uc.SessionCount()).Equal(1)

		_, err = uc.Render(ctx, idle)
		gt.Error(t, err).Is(usecase.ErrSessionNotFound)
		_, err = uc.Render(ctx, active.SessionID)
		gt.NoError(t, err)
	})

	t.Run("sessions ended during eviction are not counted", func(t *testing.T) {
		clock := newClock()
		ender := &endOnEvict{}
		uc, first := setup(t, usecase.WithClock(clock.Now), usecase.WithObserver(ender))
		second, err := uc.InitSession(ctx)
		gt.NoError(t, err).Required()

		ender.uc = uc
		ender.targets = []types.SessionID{first, second.SessionID}

		clock.Advance(time.Hour)
		gt.Value(t, uc.EvictIdle(ctx, 30*time.Minute)).Equal(1)
		gt.Value(t, uc.SessionCount()).Equal(0)
	})
}

// endOnEvict ends the other target session when the first target ends
type endOnEvict struct {
	uc      *usecase.DashboardUseCase
	targets []types.SessionID
	fired   bool
}

func (e *endOnEvict) OnRender(ctx context.Context, event *interfaces.RenderEvent) {
	if e.uc == nil || e.fired || event.Intent != types.IntentEnd {
		return
	}
	for i, sid := range e.targets {
		if sid == event.SessionID {
			e.fired = true
			other := e.targets[1-i]
			_ = e.uc.EndSession(ctx, other)
			return
		}
	}
}

func TestDashboardUseCase_OneIntentAtATime(t *testing.T) {
	uc, sid := setup(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.AddPhaseTask(ctx, sid, model.PhaseTask{Phase: types.PhaseShortTerm, TaskName: "parallel", Progress: 50})
			gt.NoError(t, err)
		}()
	}
	wg.Wait()

	d, err := uc.Render(ctx, sid)
	gt.NoError(t, err).Required()
	gt.Value(t, d.TaskCount).Equal(9 + n)
	gt.Value(t, d.Version).Equal(uint64(n))
}

func TestDashboardUseCase_Observers(t *testing.T) {
	rec := &recorder{}
	uc, sid := setup(t, usecase.WithObserver(rec))
	ctx := context.Background()

	gt.Value(t, rec.last().Intent).Equal(types.IntentInit)
	gt.Value(t, rec.last().SessionID).Equal(sid)

	d, err := uc.SetFilter(ctx, sid, types.CollectionRecommendations, []types.Priority{types.PriorityCritical})
	gt.NoError(t, err).Required()

	ev := rec.last()
	gt.Value(t, ev.Intent).Equal(types.IntentFilter)
	gt.Value(t, ev.Dashboard.Version).Equal(d.Version)
	gt.Array(t, ev.Dashboard.Recommendations).Length(2)

	// Failed intents publish nothing
	count := len(rec.events)
	_, err = uc.DeleteAt(ctx, sid, types.CollectionRisks, 99, "")
	gt.Error(t, err).Is(usecase.ErrStalePosition)
	gt.Value(t, len(rec.events)).Equal(count)
}

func TestDashboardUseCase_CustomSeed(t *testing.T) {
	seed := &model.Seed{
		Info: model.DashboardInfo{Title: "Clinic", Systems: []string{"EHR"}},
		Risks: []model.RiskCategory{
			{Name: "Only", RiskScore: 10, Priority: types.PriorityMedium},
		},
	}
	uc, sid := setup(t, usecase.WithSeed(seed))

	d, err := uc.Render(context.Background(), sid)
	gt.NoError(t, err).Required()
	gt.Value(t, d.Info.Title).Equal("Clinic")
	gt.Array(t, d.Risks).Length(1)
	gt.Array(t, d.Vulnerabilities).Length(0)
	gt.Value(t, d.SelectedSystem).Equal("EHR")
	for _, g := range d.Phases {
		gt.Value(t, g.Average).Equal(0.0)
	}
}
