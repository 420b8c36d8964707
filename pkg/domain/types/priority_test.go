package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/posture/pkg/domain/types"
)

func TestPriority_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		priority types.Priority
		want     bool
	}{
		{"critical", types.PriorityCritical, true},
		{"high", types.PriorityHigh, true},
		{"medium", types.PriorityMedium, true},
		{"low is not a priority", types.Priority("Low"), false},
		{"lowercase", types.Priority("critical"), false},
		{"empty", types.Priority(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.priority.IsValid()).Equal(tt.want)
		})
	}
}

func TestParsePriority(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p, err := types.ParsePriority("High")
		gt.NoError(t, err).Required()
		gt.Value(t, p).Equal(types.PriorityHigh)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := types.ParsePriority("Urgent")
		gt.Error(t, err).Is(types.ErrInvalidValue)
	})
}

func TestParsePriorities(t *testing.T) {
	t.Run("all valid", func(t *testing.T) {
		ps, err := types.ParsePriorities([]string{"Critical", "Medium"})
		gt.NoError(t, err).Required()
		gt.Value(t, ps).Equal([]types.Priority{types.PriorityCritical, types.PriorityMedium})
	})

	t.Run("empty input yields empty set", func(t *testing.T) {
		ps, err := types.ParsePriorities(nil)
		gt.NoError(t, err).Required()
		gt.Array(t, ps).Length(0)
	})

	t.Run("one invalid fails", func(t *testing.T) {
		_, err := types.ParsePriorities([]string{"Critical", "bogus"})
		gt.Error(t, err).Is(types.ErrInvalidValue)
	})
}

func TestPriority_Styling(t *testing.T) {
	gt.Value(t, types.PriorityCritical.Highlight()).Equal("#ffcdd2")
	gt.Value(t, types.PriorityHigh.Highlight()).Equal("#ffe0b2")
	gt.Value(t, types.PriorityMedium.Highlight()).Equal("")

	gt.Value(t, types.PriorityCritical.Color()).Equal("red")
	gt.Value(t, types.PriorityHigh.Color()).Equal("orange")
	gt.Value(t, types.PriorityMedium.Color()).Equal("yellow")

	gt.Bool(t, types.PriorityCritical.Rank() < types.PriorityHigh.Rank()).True()
	gt.Bool(t, types.PriorityHigh.Rank() < types.PriorityMedium.Rank()).True()
}
