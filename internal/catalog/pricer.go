package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Pricer prices an order from catalogue entries. Items with no catalogue
// entry fall back to the flat unit price rather than failing the order.
type Pricer struct {
	repo          Repository
	fallbackPrice float64
	logger        zerolog.Logger
}

// NewPricer creates a catalogue-backed pricing policy.
func NewPricer(repo Repository, fallbackPrice float64, logger zerolog.Logger) *Pricer {
	return &Pricer{
		repo:          repo,
		fallbackPrice: fallbackPrice,
		logger:        logger.With().Str("component", "catalog-pricer").Logger(),
	}
}

// Total sums the catalogue price of each item.
func (p *Pricer) Total(ctx context.Context, items []string) (float64, error) {
	dishes, err := p.repo.GetByNames(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("failed to price order: %w", err)
	}

	prices := make(map[string]float64, len(dishes))
	for _, d := range dishes {
		prices[strings.ToLower(d.Name)] = d.Price
	}

	var total float64
	missing := 0
	for _, item := range items {
		if price, ok := prices[strings.ToLower(strings.TrimSpace(item))]; ok {
			total += price
		} else {
			total += p.fallbackPrice
			missing++
		}
	}

	if missing > 0 {
		p.logger.Debug().
			Int("missing", missing).
			Int("items", len(items)).
			Msg("priced items missing from catalogue at fallback price")
	}

	return total, nil
}
