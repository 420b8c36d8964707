package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidRecord = goerr.New("invalid record")
	ErrEmptyText     = goerr.New("recommendation text is required")
	ErrMissingDate   = goerr.New("date is required")
)

// Context keys for error values
const (
	FieldKey      = "field"
	RuleKey       = "rule"
	FieldValueKey = "field_value"
	CollectionKey = "collection"
)
