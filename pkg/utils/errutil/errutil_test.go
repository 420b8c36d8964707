package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/posture/pkg/utils/errutil"
	"github.com/secmon-lab/posture/pkg/utils/logging"
)

func bufferedContext(buf *bytes.Buffer) context.Context {
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	return logging.With(context.Background(), logger)
}

func TestHandle(t *testing.T) {
	var buf bytes.Buffer
	ctx := bufferedContext(&buf)

	gt.Value(t, errutil.Handle(ctx, nil, "nothing")).Nil()

	err := goerr.New("boom", goerr.V("session_id", "abc"))
	got := errutil.Handle(ctx, err, "intent failed")
	gt.Value(t, got).Equal(error(err))
	gt.String(t, buf.String()).Contains("intent failed")
	gt.String(t, buf.String()).Contains("abc")
}

func TestHandleHTTP(t *testing.T) {
	t.Run("server error hides the message", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := bufferedContext(&buf)
		w := httptest.NewRecorder()

		errutil.HandleHTTP(ctx, w, goerr.New("internal detail"), http.StatusInternalServerError)

		gt.Value(t, w.Code).Equal(http.StatusInternalServerError)
		gt.Bool(t, bytes.Contains(w.Body.Bytes(), []byte("internal detail"))).False()
		gt.String(t, buf.String()).Contains("internal detail")
	})

	t.Run("client error returns the message", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := bufferedContext(&buf)
		w := httptest.NewRecorder()

		errutil.HandleHTTP(ctx, w, goerr.New("bad priority"), http.StatusBadRequest)

		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
		gt.Value(t, w.Header().Get("Content-Type")).Equal("application/json")

		var body struct {
			Error string `json:"error"`
		}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.String(t, body.Error).Contains("bad priority")
		gt.String(t, buf.String()).Contains("WARN")
	})

	t.Run("server error body is JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		errutil.HandleHTTP(context.Background(), w, goerr.New("db down"), http.StatusInternalServerError)

		gt.Value(t, w.Header().Get("Content-Type")).Equal("application/json")
		var body struct {
			Error string `json:"error"`
		}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.Value(t, body.Error).Equal(http.StatusText(http.StatusInternalServerError))
	})
}

func newSentryContext(t *testing.T, events *[]*sentry.Event) context.Context {
	t.Helper()

	var mu sync.Mutex
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			mu.Lock()
			defer mu.Unlock()
			*events = append(*events, event)
			return nil
		},
	})
	gt.NoError(t, err).Required()

	hub := sentry.NewHub(client, sentry.NewScope())
	return sentry.SetHubOnContext(context.Background(), hub)
}

func TestHandle_ReportsToSentry(t *testing.T) {
	var events []*sentry.Event
	ctx := newSentryContext(t, &events)

	err := goerr.New("seed rejected", goerr.V("session_id", "abc"), goerr.V("index", 3))
	gt.Value(t, errutil.Handle(ctx, err, "intent failed")).Equal(error(err))

	gt.Array(t, events).Length(1).Required()
	ev := events[0]
	gt.Value(t, ev.Tags["message"]).Equal("intent failed")

	values, ok := ev.Contexts[errutil.SentryContextKey]
	gt.Bool(t, ok).True()
	gt.Value(t, values["session_id"]).Equal(any("abc"))
	gt.Value(t, values["index"]).Equal(any(3))
}

func TestHandleHTTP_ReportsOnlyServerErrors(t *testing.T) {
	var events []*sentry.Event
	ctx := newSentryContext(t, &events)

	errutil.HandleHTTP(ctx, httptest.NewRecorder(), goerr.New("bad input"), http.StatusBadRequest)
	gt.Array(t, events).Length(0)

	errutil.HandleHTTP(ctx, httptest.NewRecorder(), goerr.New("broken", goerr.V("collection", "risks")), http.StatusInternalServerError)
	gt.Array(t, events).Length(1).Required()
	gt.Value(t, events[0].Contexts[errutil.SentryContextKey]["collection"]).Equal(any("risks"))
}
