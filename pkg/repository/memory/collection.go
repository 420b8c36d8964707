package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
)

// collection is an insertion-ordered list of records. Records are plain
// values so everything handed out is already a copy.
type collection[T model.Record] struct {
	mu      sync.RWMutex
	name    types.Collection
	records []T
	withID  func(T, types.RecordID) T
}

func newCollection[T model.Record](name types.Collection, withID func(T, types.RecordID) T) *collection[T] {
	return &collection[T]{
		name:    name,
		records: []T{},
		withID:  withID,
	}
}

func (c *collection[T]) List(ctx context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.records), nil
}

func (c *collection[T]) Get(ctx context.Context, id types.RecordID) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := c.indexOf(id)
	if idx < 0 {
		var zero T
		return zero, goerr.Wrap(ErrNotFound, "record not found",
			goerr.V("collection", c.name), goerr.V("id", id))
	}
	return c.records[idx], nil
}

func (c *collection[T]) IndexOf(ctx context.Context, id types.RecordID) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return -1, goerr.Wrap(ErrNotFound, "record not found",
			goerr.V("collection", c.name), goerr.V("id", id))
	}
	return idx, nil
}

func (c *collection[T]) Append(ctx context.Context, record T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := record.RecordID()
	if id == "" {
		id = types.NewRecordID()
		record = c.withID(record, id)
	} else if c.indexOf(id) >= 0 {
		var zero T
		return zero, goerr.Wrap(ErrDuplicateID, "record ID already exists",
			goerr.V("collection", c.name), goerr.V("id", id))
	}

	c.records = append(c.records, record)
	return record, nil
}

func (c *collection[T]) RemoveAt(ctx context.Context, position int, expected types.RecordID) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if position < 0 || position >= len(c.records) {
		return zero, goerr.Wrap(ErrOutOfRange, "no record at position",
			goerr.V("collection", c.name), goerr.V("position", position), goerr.V("length", len(c.records)))
	}

	current := c.records[position]
	if expected != "" && current.RecordID() != expected {
		return zero, goerr.Wrap(ErrIDMismatch, "record at position changed",
			goerr.V("collection", c.name),
			goerr.V("position", position),
			goerr.V("expected", expected),
			goerr.V("actual", current.RecordID()),
		)
	}

	c.records = slices.Delete(c.records, position, position+1)
	return current, nil
}

func (c *collection[T]) Remove(ctx context.Context, id types.RecordID) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		var zero T
		return zero, goerr.Wrap(ErrNotFound, "record not found",
			goerr.V("collection", c.name), goerr.V("id", id))
	}

	removed := c.records[idx]
	c.records = slices.Delete(c.records, idx, idx+1)
	return removed, nil
}

func (c *collection[T]) Len(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.records), nil
}

func (c *collection[T]) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = []T{}
	return nil
}

// indexOf must be called with the lock held
func (c *collection[T]) indexOf(id types.RecordID) int {
	return slices.IndexFunc(c.records, func(r T) bool {
		return r.RecordID() == id
	})
}
