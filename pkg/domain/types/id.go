package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// RecordID is the durable identifier assigned to a record when it is appended
// to a collection. Unlike the record position it never changes.
type RecordID string

// NewRecordID generates a new UUID v4 RecordID
func NewRecordID() RecordID {
	return RecordID(uuid.New().String())
}

// Validate checks if the RecordID is a well-formed UUID
func (id RecordID) Validate() error {
	if id == "" {
		return goerr.New("record ID cannot be empty")
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		return goerr.Wrap(err, "record ID must be a UUID", goerr.V("id", id))
	}
	return nil
}

// String returns the string representation of RecordID
func (id RecordID) String() string {
	return string(id)
}

// SessionID identifies one isolated dashboard session
type SessionID string

// NewSessionID generates a new UUID v4 SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// Validate checks if the SessionID is a well-formed UUID
func (id SessionID) Validate() error {
	if id == "" {
		return goerr.New("session ID cannot be empty")
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		return goerr.Wrap(err, "session ID must be a UUID", goerr.V("id", id))
	}
	return nil
}

// String returns the string representation of SessionID
func (id SessionID) String() string {
	return string(id)
}
