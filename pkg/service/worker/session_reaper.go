package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/posture/pkg/utils/logging"
)

// SessionEvictor ends sessions that have been idle for longer than ttl
type SessionEvictor interface {
	EvictIdle(ctx context.Context, ttl time.Duration) int
}

// SessionReaper periodically ends idle dashboard sessions so that abandoned
// browser tabs do not keep their record stores alive
//
// Architecture assumptions:
// - Single server instance, sessions are held in process memory
type SessionReaper struct {
	evictor  SessionEvictor
	ttl      time.Duration
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSessionReaper creates a new worker for evicting idle sessions
func NewSessionReaper(evictor SessionEvictor, ttl, interval time.Duration) *SessionReaper {
	return &SessionReaper{
		evictor:  evictor,
		ttl:      ttl,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background eviction loop without blocking
func (w *SessionReaper) Start(ctx context.Context) error {
	logging.Default().Info("Session reaper starting",
		"ttl", w.ttl.String(),
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *SessionReaper) Stop() {
	logging.Default().Info("Session reaper stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Session reaper stopped")
}

func (w *SessionReaper) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)

		case <-w.stopCh:
			logging.Default().Info("Session reaper received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Session reaper context cancelled")
			return
		}
	}
}

func (w *SessionReaper) sweep(ctx context.Context) {
	if n := w.evictor.EvictIdle(ctx, w.ttl); n > 0 {
		logging.Default().Info("Idle sessions evicted", "count", n)
	}
}
