package interfaces

import (
	"context"

	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
)

// CollectionRepository is an ordered collection of records addressable by
// zero-based position. Order is insertion order.
type CollectionRepository[T model.Record] interface {
	// List returns every record in position order
	List(ctx context.Context) ([]T, error)

	// Get retrieves a record by its durable ID
	Get(ctx context.Context, id types.RecordID) (T, error)

	// IndexOf returns the current position of a record
	IndexOf(ctx context.Context, id types.RecordID) (int, error)

	// Append adds a record at the end, assigning a RecordID when it has none
	Append(ctx context.Context, record T) (T, error)

	// RemoveAt removes the record at position and closes the gap. When
	// expected is not empty the record at position must carry that ID.
	RemoveAt(ctx context.Context, position int, expected types.RecordID) (T, error)

	// Remove removes a record by its durable ID and closes the gap
	Remove(ctx context.Context, id types.RecordID) (T, error)

	// Len returns the number of records
	Len(ctx context.Context) (int, error)

	// Clear removes every record
	Clear(ctx context.Context) error
}

// Repository is the record store of one dashboard session
type Repository interface {
	Risk() CollectionRepository[model.RiskCategory]
	Vulnerability() CollectionRepository[model.Vulnerability]
	Task() CollectionRepository[model.PhaseTask]
	Recommendation() CollectionRepository[model.Recommendation]
}
