package http

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/secmon-lab/posture/pkg/domain/interfaces"
	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
	"github.com/secmon-lab/posture/pkg/utils/logging"
	"github.com/secmon-lab/posture/pkg/utils/safe"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

// renderMessage is pushed to every subscriber of a session after an intent
type renderMessage struct {
	Type       string             `json:"type"`
	Intent     string             `json:"intent"`
	Collection string             `json:"collection,omitempty"`
	Dashboard  *dashboardResponse `json:"dashboard,omitempty"`
}

var endMessage = []byte(`{"type":"end","intent":"end"}`)

// pendingMessage is a render published before the subscriber received its
// initial render
type pendingMessage struct {
	version uint64
	end     bool
	data    []byte
}

type subscriber struct {
	sid  types.SessionID
	conn *websocket.Conn
	send chan []byte

	// guarded by Hub.mu
	primed  bool
	pending []pendingMessage
}

// Hub pushes fresh renders to websocket subscribers. It is registered as a
// RenderObserver of the dashboard use case; sends never block the intent that
// produced the render, and a subscriber that falls behind is disconnected.
//
// A subscriber is registered before its initial render is taken. Renders
// published in between are held back and only those newer than the initial
// render are delivered after it.
type Hub struct {
	mu          sync.Mutex
	subscribers map[types.SessionID]map[*subscriber]struct{}
	upgrader    websocket.Upgrader
}

type HubOption func(*Hub)

// WithAllowedOrigins accepts websocket handshakes from the given origins in
// addition to same-origin requests
func WithAllowedOrigins(origins ...string) HubOption {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
				return true
			}
			return slices.Contains(origins, origin)
		}
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subscribers: make(map[types.SessionID]map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnRender implements interfaces.RenderObserver
func (h *Hub) OnRender(ctx context.Context, event *interfaces.RenderEvent) {
	msg := renderMessage{
		Type:       "render",
		Intent:     event.Intent.String(),
		Collection: event.Collection.String(),
	}
	var version uint64
	if event.Dashboard != nil {
		msg.Dashboard = toDashboardResponse(event.Dashboard)
		version = event.Dashboard.Version
	} else {
		msg.Type = "end"
	}

	data, err := json.Marshal(msg)
	if err != nil {
		logging.From(ctx).Error("failed to marshal render message", "error", err, "session_id", event.SessionID)
		return
	}
	end := event.Intent == types.IntentEnd

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers[event.SessionID] {
		if !sub.primed {
			sub.pending = append(sub.pending, pendingMessage{version: version, end: end, data: data})
			continue
		}
		if h.deliverLocked(ctx, sub, data) && end {
			h.removeLocked(sub)
		}
	}
}

// deliverLocked queues data without blocking. A subscriber whose queue is full
// is removed and false is returned.
func (h *Hub) deliverLocked(ctx context.Context, sub *subscriber, data []byte) bool {
	select {
	case sub.send <- data:
		return true
	default:
		logging.From(ctx).Warn("websocket subscriber too slow, disconnecting", "session_id", sub.sid)
		h.removeLocked(sub)
		return false
	}
}

// Subscribers returns the number of open subscriptions of a session
func (h *Hub) Subscribers(sid types.SessionID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[sid])
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.subscribers {
		for sub := range subs {
			h.removeLocked(sub)
		}
	}
}

// subscribe upgrades the request and registers a subscriber of sid that does
// not receive anything until prime or finish is called
func (h *Hub) subscribe(w http.ResponseWriter, r *http.Request, sid types.SessionID) (*subscriber, context.Context, bool) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		logging.From(r.Context()).Warn("websocket upgrade failed", "error", err, "session_id", sid)
		return nil, nil, false
	}

	sub := &subscriber{
		sid:  sid,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	if h.subscribers[sid] == nil {
		h.subscribers[sid] = make(map[*subscriber]struct{})
	}
	h.subscribers[sid][sub] = struct{}{}
	h.mu.Unlock()

	logger := logging.From(r.Context()).With("session_id", sid)
	logger.Info("websocket subscriber connected")

	ctx := logging.With(context.Background(), logger)
	go h.writePump(ctx, sub)
	go h.readPump(ctx, sub)
	return sub, ctx, true
}

// prime delivers the initial render followed by the held back renders newer
// than it. A held back end message closes the subscription.
func (h *Hub) prime(ctx context.Context, sub *subscriber, initial *model.Dashboard) {
	first, err := json.Marshal(renderMessage{Type: "render", Intent: "render", Dashboard: toDashboardResponse(initial)})
	if err != nil {
		logging.From(ctx).Error("failed to marshal initial render", "error", err)
		h.remove(sub)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[sub.sid][sub]; !ok {
		return
	}
	pending := sub.pending
	sub.pending = nil
	sub.primed = true

	if !h.deliverLocked(ctx, sub, first) {
		return
	}
	for _, p := range pending {
		if p.end {
			if h.deliverLocked(ctx, sub, p.data) {
				h.removeLocked(sub)
			}
			return
		}
		if p.version <= initial.Version {
			continue
		}
		if !h.deliverLocked(ctx, sub, p.data) {
			return
		}
	}
}

// finish sends an end message to a subscriber whose session is already gone
// and closes the subscription
func (h *Hub) finish(ctx context.Context, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[sub.sid][sub]; !ok {
		return
	}
	sub.pending = nil
	sub.primed = true
	if h.deliverLocked(ctx, sub, endMessage) {
		h.removeLocked(sub)
	}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *subscriber) {
	subs, ok := h.subscribers[sub.sid]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subscribers, sub.sid)
	}
	close(sub.send)
}

// readPump discards client messages and detects disconnects
func (h *Hub) readPump(ctx context.Context, sub *subscriber) {
	defer func() {
		h.remove(sub)
		safe.Close(ctx, sub.conn)
	}()

	sub.conn.SetReadLimit(512)
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.From(ctx).Warn("websocket read failed", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(ctx context.Context, sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		safe.Close(ctx, sub.conn)
		logging.From(ctx).Info("websocket subscriber disconnected")
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logging.From(ctx).Warn("websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// websocketHandler rejects unknown sessions before the upgrade. The initial
// render is taken after the subscriber is registered so no intent falls
// between the two.
func websocketHandler(uc DashboardUseCase, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := sessionIDOf(r)
		if _, err := uc.Render(r.Context(), sid); err != nil {
			writeError(w, r, err)
			return
		}

		sub, ctx, ok := hub.subscribe(w, r, sid)
		if !ok {
			return
		}

		d, err := uc.Render(ctx, sid)
		if err != nil {
			logging.From(ctx).Info("session gone before initial render", "error", err)
			hub.finish(ctx, sub)
			return
		}
		hub.prime(ctx, sub, d)
	}
}
