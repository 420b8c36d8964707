package interfaces

import (
	"context"

	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
)

// RenderEvent is published after every intent has been applied to a session
type RenderEvent struct {
	SessionID  types.SessionID
	Intent     types.Intent
	Collection types.Collection
	// Dashboard is nil for IntentEnd
	Dashboard *model.Dashboard
}

// RenderObserver receives a fresh render after every intent. Observers are
// called synchronously after the session lock has been released and must not
// block.
type RenderObserver interface {
	OnRender(ctx context.Context, event *RenderEvent)
}

// RenderObserverFunc adapts a function to RenderObserver
type RenderObserverFunc func(ctx context.Context, event *RenderEvent)

// OnRender calls f
func (f RenderObserverFunc) OnRender(ctx context.Context, event *RenderEvent) {
	f(ctx, event)
}
