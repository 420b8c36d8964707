package interfaces

import "github.com/m-mizutani/goerr/v2"

// Errors every Repository implementation reports
var (
	ErrRecordNotFound     = goerr.New("record not found")
	ErrPositionOutOfRange = goerr.New("position out of range")
	ErrPositionMismatch   = goerr.New("record at position does not match expected ID")
	ErrDuplicateID        = goerr.New("duplicate record ID")
)
