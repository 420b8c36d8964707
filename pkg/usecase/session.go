package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/posture/pkg/domain/interfaces"
	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
)

// session is one isolated dashboard. mu serialises intents so that each one
// runs validate, mutate and render without interleaving.
type session struct {
	mu         sync.Mutex
	id         types.SessionID
	repo       interfaces.Repository
	state      model.ViewState
	version    uint64
	lastActive time.Time
	closed     bool
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[types.SessionID]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[types.SessionID]*session),
	}
}

func (s *sessionStore) put(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.id] = sess
}

func (s *sessionStore) get(id types.SessionID) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, goerr.Wrap(ErrSessionNotFound, "no such session", goerr.V(SessionIDKey, id))
	}
	return sess, nil
}

func (s *sessionStore) remove(id types.SessionID) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, goerr.Wrap(ErrSessionNotFound, "no such session", goerr.V(SessionIDKey, id))
	}
	delete(s.sessions, id)
	return sess, nil
}

func (s *sessionStore) list() []*session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

func (s *sessionStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// lock acquires the session for one intent. It fails when the session was
// ended while the caller was waiting.
func (s *sessionStore) lock(id types.SessionID) (*session, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return nil, goerr.Wrap(ErrSessionNotFound, "session has ended", goerr.V(SessionIDKey, id))
	}
	return sess, nil
}

func snapshot(ctx context.Context, repo interfaces.Repository) (*model.Snapshot, error) {
	risks, err := repo.Risk().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk categories")
	}
	vulns, err := repo.Vulnerability().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list vulnerabilities")
	}
	tasks, err := repo.Task().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list phase tasks")
	}
	recs, err := repo.Recommendation().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list recommendations")
	}

	return &model.Snapshot{
		Risks:           risks,
		Vulnerabilities: vulns,
		Tasks:           tasks,
		Recommendations: recs,
	}, nil
}

// loadSeed empties repo and appends every seed record in order
func loadSeed(ctx context.Context, repo interfaces.Repository, seed *model.Seed) error {
	if err := fill(ctx, repo.Risk(), seed.Risks); err != nil {
		return goerr.Wrap(err, "failed to seed risk categories")
	}
	if err := fill(ctx, repo.Vulnerability(), seed.Vulnerabilities); err != nil {
		return goerr.Wrap(err, "failed to seed vulnerabilities")
	}
	if err := fill(ctx, repo.Task(), seed.Tasks); err != nil {
		return goerr.Wrap(err, "failed to seed phase tasks")
	}
	if err := fill(ctx, repo.Recommendation(), seed.Recommendations); err != nil {
		return goerr.Wrap(err, "failed to seed recommendations")
	}
	return nil
}

func fill[T model.Record](ctx context.Context, repo interfaces.CollectionRepository[T], records []T) error {
	if err := repo.Clear(ctx); err != nil {
		return err
	}
	for _, r := range records {
		if _, err := repo.Append(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
