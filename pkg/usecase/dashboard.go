package usecase

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/posture/pkg/domain/interfaces"
	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
	"github.com/secmon-lab/posture/pkg/utils/logging"
)

// Mutation is the outcome of an add intent: the stored record, a short
// confirmation for the renderer and the fresh render
type Mutation[T model.Record] struct {
	Record    T
	Message   string
	Dashboard *model.Dashboard
}

type DashboardUseCase struct {
	newRepo      RepositoryFactory
	seed         *model.Seed
	headlineMode types.HeadlineMode
	clock        func() time.Time
	observers    []interfaces.RenderObserver
	sessions     *sessionStore
}

func NewDashboardUseCase(newRepo RepositoryFactory, seed *model.Seed, mode types.HeadlineMode, clock func() time.Time, observers ...interfaces.RenderObserver) *DashboardUseCase {
	if seed == nil {
		seed = model.DefaultSeed()
	}
	if clock == nil {
		clock = time.Now
	}
	return &DashboardUseCase{
		newRepo:      newRepo,
		seed:         seed,
		headlineMode: mode,
		clock:        clock,
		observers:    observers,
		sessions:     newSessionStore(),
	}
}

// InitSession creates a new session seeded with the configured dataset
func (uc *DashboardUseCase) InitSession(ctx context.Context) (*model.Dashboard, error) {
	sess := &session{
		id:         types.NewSessionID(),
		repo:       uc.newRepo(),
		lastActive: uc.clock(),
	}

	if err := uc.reset(ctx, sess); err != nil {
		return nil, goerr.Wrap(err, "failed to initialise session")
	}

	d, err := uc.render(ctx, sess)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to render new session")
	}
	uc.sessions.put(sess)

	logging.From(ctx).Info("session started", "session_id", sess.id)
	uc.notify(ctx, sess.id, types.IntentInit, "", d)
	return d, nil
}

// ResetSession discards every change made in the session and reloads the seed
func (uc *DashboardUseCase) ResetSession(ctx context.Context, sid types.SessionID) (*model.Dashboard, error) {
	return uc.apply(ctx, sid, types.IntentReset, "", func(sess *session) error {
		return uc.reset(ctx, sess)
	})
}

// EndSession discards the session and everything in it
func (uc *DashboardUseCase) EndSession(ctx context.Context, sid types.SessionID) error {
	sess, err := uc.sessions.remove(sid)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()

	logging.From(ctx).Info("session ended", "session_id", sid)
	uc.notify(ctx, sid, types.IntentEnd, "", nil)
	return nil
}

// EvictIdle ends every session with no intent for longer than ttl and returns
// how many were ended
func (uc *DashboardUseCase) EvictIdle(ctx context.Context, ttl time.Duration) int {
	now := uc.clock()

	var idle []types.SessionID
	for _, sess := range uc.sessions.list() {
		sess.mu.Lock()
		if !sess.closed && now.Sub(sess.lastActive) > ttl {
			sess.closed = true
			idle = append(idle, sess.id)
		}
		sess.mu.Unlock()
	}

	evicted := 0
	for _, sid := range idle {
		// EndSession may have removed it meanwhile
		if _, err := uc.sessions.remove(sid); err != nil {
			continue
		}
		evicted++
		logging.From(ctx).Info("idle session evicted", "session_id", sid, "ttl", ttl)
		uc.notify(ctx, sid, types.IntentEnd, "", nil)
	}
	return evicted
}

// SessionCount returns the number of live sessions
func (uc *DashboardUseCase) SessionCount() int {
	return uc.sessions.len()
}

// Render recomputes the render model of a session from its current records
func (uc *DashboardUseCase) Render(ctx context.Context, sid types.SessionID) (*model.Dashboard, error) {
	sess, err := uc.sessions.lock(sid)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	sess.lastActive = uc.clock()
	return uc.render(ctx, sess)
}

// AddRiskCategory appends a risk category to the session
func (uc *DashboardUseCase) AddRiskCategory(ctx context.Context, sid types.SessionID, risk model.RiskCategory) (*Mutation[model.RiskCategory], error) {
	risk.ID = ""
	return add(ctx, uc, sid, types.CollectionRisks, interfaces.Repository.Risk, risk,
		"Risk category added: "+risk.Name)
}

// AddVulnerability appends a vulnerability discovered today. Any discovery
// date in the input is ignored.
func (uc *DashboardUseCase) AddVulnerability(ctx context.Context, sid types.SessionID, vuln model.Vulnerability) (*Mutation[model.Vulnerability], error) {
	vuln.ID = ""
	vuln.DiscoveryDate = types.DateOf(uc.clock())
	return add(ctx, uc, sid, types.CollectionVulnerabilities, interfaces.Repository.Vulnerability, vuln,
		"Vulnerability added: "+vuln.Name)
}

// AddPhaseTask appends a remediation task
func (uc *DashboardUseCase) AddPhaseTask(ctx context.Context, sid types.SessionID, task model.PhaseTask) (*Mutation[model.PhaseTask], error) {
	task.ID = ""
	return add(ctx, uc, sid, types.CollectionTasks, interfaces.Repository.Task, task,
		"Task added: "+task.TaskName)
}

// AddRecommendation appends a recommendation. A recommendation without text
// is rejected with ErrEmptyText and the collection is left unchanged.
func (uc *DashboardUseCase) AddRecommendation(ctx context.Context, sid types.SessionID, rec model.Recommendation) (*Mutation[model.Recommendation], error) {
	rec.ID = ""
	return add(ctx, uc, sid, types.CollectionRecommendations, interfaces.Repository.Recommendation, rec,
		"Recommendation added: "+rec.Text)
}

func add[T model.Record](ctx context.Context, uc *DashboardUseCase, sid types.SessionID, coll types.Collection, repoOf func(interfaces.Repository) interfaces.CollectionRepository[T], record T, message string) (*Mutation[T], error) {
	if err := record.Validate(); err != nil {
		logging.From(ctx).Info("record rejected",
			"session_id", sid,
			"collection", coll,
			"reason", err.Error(),
		)
		return nil, goerr.Wrap(err, "record rejected", goerr.V(SessionIDKey, sid), goerr.V(CollectionKey, coll))
	}

	var created T
	d, err := uc.apply(ctx, sid, types.IntentAdd, coll, func(sess *session) error {
		c, err := repoOf(sess.repo).Append(ctx, record)
		if err != nil {
			return goerr.Wrap(err, "failed to append record", goerr.V(SessionIDKey, sid), goerr.V(CollectionKey, coll))
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Mutation[T]{
		Record:    created,
		Message:   message,
		Dashboard: d,
	}, nil
}

// DeleteRecord removes a record by its durable ID. Records after it move up
// one position.
func (uc *DashboardUseCase) DeleteRecord(ctx context.Context, sid types.SessionID, coll types.Collection, id types.RecordID) (*model.Dashboard, error) {
	return uc.apply(ctx, sid, types.IntentDelete, coll, func(sess *session) error {
		r, err := removerFor(sess.repo, coll)
		if err != nil {
			return err
		}
		if err := r.remove(ctx, id); err != nil {
			if errors.Is(err, interfaces.ErrRecordNotFound) {
				return goerr.Wrap(ErrRecordNotFound, "cannot delete record",
					goerr.V(SessionIDKey, sid), goerr.V(CollectionKey, coll), goerr.V(RecordIDKey, id))
			}
			return goerr.Wrap(err, "failed to delete record")
		}
		return nil
	})
}

// DeleteAt removes the record a renderer showed at position. The position is
// resolved against the current records; when expected is set the record
// found there must carry that ID. Any mismatch fails with ErrStalePosition and
// leaves the collection unchanged.
func (uc *DashboardUseCase) DeleteAt(ctx context.Context, sid types.SessionID, coll types.Collection, position int, expected types.RecordID) (*model.Dashboard, error) {
	return uc.apply(ctx, sid, types.IntentDelete, coll, func(sess *session) error {
		r, err := removerFor(sess.repo, coll)
		if err != nil {
			return err
		}
		if err := r.removeAt(ctx, position, expected); err != nil {
			if errors.Is(err, interfaces.ErrPositionOutOfRange) || errors.Is(err, interfaces.ErrPositionMismatch) {
				return goerr.Wrap(ErrStalePosition, "cannot delete record at position",
					goerr.V(SessionIDKey, sid),
					goerr.V(CollectionKey, coll),
					goerr.V(PositionKey, position),
					goerr.V(RecordIDKey, expected),
				)
			}
			return goerr.Wrap(err, "failed to delete record")
		}
		return nil
	})
}

// SetFilter replaces the priority filter of a collection. Only
// recommendations can be filtered. An empty set hides every record.
func (uc *DashboardUseCase) SetFilter(ctx context.Context, sid types.SessionID, coll types.Collection, priorities []types.Priority) (*model.Dashboard, error) {
	if !coll.Filterable() {
		return nil, goerr.Wrap(ErrNotFilterable, "cannot filter collection", goerr.V(CollectionKey, coll))
	}
	for _, p := range priorities {
		if !p.IsValid() {
			return nil, goerr.Wrap(ErrInvalidInput, "invalid priority", goerr.V("priority", p))
		}
	}

	return uc.apply(ctx, sid, types.IntentFilter, coll, func(sess *session) error {
		sess.state.Filter = model.NewPriorityFilter(priorities...)
		return nil
	})
}

// SelectSystem changes the system shown in the vulnerability analysis
// selector. The selection does not filter any records.
func (uc *DashboardUseCase) SelectSystem(ctx context.Context, sid types.SessionID, system string) (*model.Dashboard, error) {
	if !slices.Contains(uc.seed.Info.Systems, system) {
		return nil, goerr.Wrap(ErrUnknownSystem, "cannot select system", goerr.V("system", system))
	}

	return uc.apply(ctx, sid, types.IntentSelect, types.CollectionVulnerabilities, func(sess *session) error {
		sess.state.SelectedSystem = system
		return nil
	})
}

// apply runs one intent under the session lock, renders the result and then
// publishes it to observers
func (uc *DashboardUseCase) apply(ctx context.Context, sid types.SessionID, intent types.Intent, coll types.Collection, fn func(sess *session) error) (*model.Dashboard, error) {
	sess, err := uc.sessions.lock(sid)
	if err != nil {
		return nil, err
	}

	d, err := func() (*model.Dashboard, error) {
		defer sess.mu.Unlock()

		sess.lastActive = uc.clock()
		if err := fn(sess); err != nil {
			return nil, err
		}
		sess.version++
		return uc.render(ctx, sess)
	}()
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, sid, intent, coll, d)
	return d, nil
}

func (uc *DashboardUseCase) reset(ctx context.Context, sess *session) error {
	if err := loadSeed(ctx, sess.repo, uc.seed); err != nil {
		return err
	}

	sess.state = model.ViewState{
		Filter:       model.DefaultPriorityFilter(),
		HeadlineMode: uc.headlineMode,
	}
	if len(uc.seed.Info.Systems) > 0 {
		sess.state.SelectedSystem = uc.seed.Info.Systems[0]
	}
	return nil
}

// render must be called with the session lock held
func (uc *DashboardUseCase) render(ctx context.Context, sess *session) (*model.Dashboard, error) {
	snap, err := snapshot(ctx, sess.repo)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to take snapshot", goerr.V(SessionIDKey, sess.id))
	}

	d := model.BuildDashboard(snap, uc.seed.Info, sess.state)
	d.SessionID = sess.id
	d.Version = sess.version
	d.RenderedAt = uc.clock()
	return d, nil
}

func (uc *DashboardUseCase) notify(ctx context.Context, sid types.SessionID, intent types.Intent, coll types.Collection, d *model.Dashboard) {
	if len(uc.observers) == 0 {
		return
	}
	event := &interfaces.RenderEvent{
		SessionID:  sid,
		Intent:     intent,
		Collection: coll,
		Dashboard:  d,
	}
	for _, o := range uc.observers {
		o.OnRender(ctx, event)
	}
}

type remover interface {
	remove(ctx context.Context, id types.RecordID) error
	removeAt(ctx context.Context, position int, expected types.RecordID) error
}

type collectionRemover[T model.Record] struct {
	repo interfaces.CollectionRepository[T]
}

func (r collectionRemover[T]) remove(ctx context.Context, id types.RecordID) error {
	_, err := r.repo.Remove(ctx, id)
	return err
}

func (r collectionRemover[T]) removeAt(ctx context.Context, position int, expected types.RecordID) error {
	_, err := r.repo.RemoveAt(ctx, position, expected)
	return err
}

func removerFor(repo interfaces.Repository, coll types.Collection) (remover, error) {
	switch coll {
	case types.CollectionRisks:
		return collectionRemover[model.RiskCategory]{repo: repo.Risk()}, nil
	case types.CollectionVulnerabilities:
		return collectionRemover[model.Vulnerability]{repo: repo.Vulnerability()}, nil
	case types.CollectionTasks:
		return collectionRemover[model.PhaseTask]{repo: repo.Task()}, nil
	case types.CollectionRecommendations:
		return collectionRemover[model.Recommendation]{repo: repo.Recommendation()}, nil
	default:
		return nil, goerr.Wrap(ErrInvalidInput, "unknown collection", goerr.V(CollectionKey, coll))
	}
}
