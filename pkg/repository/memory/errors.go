package memory

import "github.com/secmon-lab/posture/pkg/domain/interfaces"

var (
	// ErrNotFound is returned when no record carries the requested ID
	ErrNotFound = interfaces.ErrRecordNotFound
	// ErrOutOfRange is returned when a position does not address a record
	ErrOutOfRange = interfaces.ErrPositionOutOfRange
	// ErrIDMismatch is returned when the record at a position is not the expected one
	ErrIDMismatch = interfaces.ErrPositionMismatch
	// ErrDuplicateID is returned when an appended record reuses an existing ID
	ErrDuplicateID = interfaces.ErrDuplicateID
)
