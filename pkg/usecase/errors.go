package usecase

import (
	"errors"

	"github.com/secmon-lab/posture/pkg/domain/model"
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrSessionNotFound = errors.New("session not found")
	ErrRecordNotFound  = errors.New("record not found")

	// Render-boundary errors
	ErrStalePosition = errors.New("record no longer exists at that position")

	// Input errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFilterable = errors.New("collection does not support filtering")
	ErrUnknownSystem = errors.New("unknown system")

	// ErrEmptyText rejects a recommendation without text. It is the same value
	// as model.ErrEmptyText.
	ErrEmptyText = model.ErrEmptyText
)

// Context keys for error values
const (
	SessionIDKey  = "session_id"
	CollectionKey = "collection"
	RecordIDKey   = "record_id"
	PositionKey   = "position"
)
