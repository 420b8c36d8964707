package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/posture/pkg/utils/logging"
	"github.com/secmon-lab/posture/pkg/utils/safe"
)

// SentryContextKey names the Sentry event context holding goerr values
const SentryContextKey = "goerr"

// Handle logs the error with a message and reports it to Sentry when a client
// is configured. It returns err unchanged.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	report(ctx, err, msg)
	return err
}

// HandleHTTP writes an HTTP error response. 5xx errors are logged with their
// stack and reported; 4xx errors are logged as warnings only.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	if statusCode < http.StatusInternalServerError {
		logger.Warn("HTTP client error",
			"status", statusCode,
			"error", err.Error(),
		)
		writeError(ctx, w, err.Error(), statusCode)
		return
	}

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
		)
	}
	report(ctx, err, "HTTP error")

	writeError(ctx, w, http.StatusText(statusCode), statusCode)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError replies with a JSON body {"error": reason}
func writeError(ctx context.Context, w http.ResponseWriter, reason string, statusCode int) {
	data, err := json.Marshal(errorResponse{Error: reason})
	if err != nil {
		logging.From(ctx).Error("failed to marshal error response", "error", err)
		http.Error(w, http.StatusText(statusCode), statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	safe.Write(ctx, w, data)
}

func report(ctx context.Context, err error, msg string) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		var ge *goerr.Error
		if errors.As(err, &ge) {
			if values := ge.Values(); len(values) > 0 {
				scope.SetContext(SentryContextKey, sentry.Context(values))
			}
		}
		evID := hub.CaptureException(err)
		if evID != nil {
			logging.From(ctx).Info("error reported to sentry", "event_id", *evID)
		}
	})
}
