package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFlatPolicy_Total(t *testing.T) {
	tests := []struct {
		name     string
		unit     float64
		items    []string
		expected float64
	}{
		{"single item", 1500, []string{"Jollof Rice"}, 1500},
		{"three items", 1500, []string{"a", "b", "c"}, 4500},
		{"different unit price", 2000, []string{"a", "b"}, 4000},
		{"no items", 1500, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := FlatPolicy{UnitPrice: tt.unit}.Total(context.Background(), tt.items)
			assert.NoError(t, err)
			assert.InDelta(t, tt.expected, total, 1e-9)
		})
	}
}

func TestIDGenerator(t *testing.T) {
	g := &idGenerator{}
	now := time.Date(2026, 8, 28, 12, 30, 45, 0, time.UTC)

	first := g.next(now)
	assert.Equal(t, "DD20260828123045", first)

	// Same second: sequence suffix keeps IDs unique.
	second := g.next(now)
	third := g.next(now)
	assert.Equal(t, "DD20260828123045-1", second)
	assert.Equal(t, "DD20260828123045-2", third)

	// New second resets the sequence.
	later := g.next(now.Add(time.Second))
	assert.Equal(t, "DD20260828123046", later)
}
