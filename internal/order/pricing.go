package order

import "context"

// PricePolicy computes the total amount for a list of order items. The
// total is computed once at order creation and snapshotted; it is never
// recomputed afterwards.
type PricePolicy interface {
	Total(ctx context.Context, items []string) (float64, error)
}

// FlatPolicy prices every item at the same unit price. It is the reference
// policy; a catalogue-backed policy replaces it when per-dish prices are
// available.
type FlatPolicy struct {
	UnitPrice float64
}

// Total returns unit price times item count.
func (p FlatPolicy) Total(_ context.Context, items []string) (float64, error) {
	return float64(len(items)) * p.UnitPrice, nil
}
