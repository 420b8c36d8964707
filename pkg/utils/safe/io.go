package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/posture/pkg/utils/logging"
)

// Close closes an io.Closer and logs any error. A nil closer is ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Debug("Failed to close", slog.Any("error", err))
	}
}

// Write writes data to w and logs any error. Responses are best effort once
// the status line has been sent.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("Failed to write", slog.Any("error", err))
	}
}
