package model

import "github.com/secmon-lab/posture/pkg/domain/types"

// PriorityFilter is the set of priorities allowed through a view projection.
// The zero value allows nothing.
type PriorityFilter struct {
	allowed map[types.Priority]struct{}
}

// NewPriorityFilter returns a filter allowing exactly the given priorities
func NewPriorityFilter(priorities ...types.Priority) PriorityFilter {
	allowed := make(map[types.Priority]struct{}, len(priorities))
	for _, p := range priorities {
		allowed[p] = struct{}{}
	}
	return PriorityFilter{allowed: allowed}
}

// DefaultPriorityFilter allows Critical and High
func DefaultPriorityFilter() PriorityFilter {
	return NewPriorityFilter(types.PriorityCritical, types.PriorityHigh)
}

// Allows reports whether p is in the filter set
func (f PriorityFilter) Allows(p types.Priority) bool {
	_, ok := f.allowed[p]
	return ok
}

// IsEmpty reports whether the filter allows nothing
func (f PriorityFilter) IsEmpty() bool {
	return len(f.allowed) == 0
}

// Values returns the allowed priorities in priority order
func (f PriorityFilter) Values() []types.Priority {
	out := make([]types.Priority, 0, len(f.allowed))
	for _, p := range types.AllPriorities() {
		if f.Allows(p) {
			out = append(out, p)
		}
	}
	return out
}

// Project returns, in input order, the items whose priority is allowed by
// filter. An empty filter yields an empty result.
func Project[T any](items []T, filter PriorityFilter, priorityOf func(T) types.Priority) []T {
	out := make([]T, 0, len(items))
	if filter.IsEmpty() {
		return out
	}
	for _, item := range items {
		if filter.Allows(priorityOf(item)) {
			out = append(out, item)
		}
	}
	return out
}

// ProjectRecommendations applies filter to recommendations
func ProjectRecommendations(recs []Recommendation, filter PriorityFilter) []Recommendation {
	return Project(recs, filter, func(r Recommendation) types.Priority { return r.Priority })
}
