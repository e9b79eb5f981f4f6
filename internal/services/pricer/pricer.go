// Package pricer provides current market quotes from the supported exchanges.
package pricer

import (
	"context"

	"rung/internal/domain"
)

// Pricer returns the latest quote for a trading pair.
type Pricer interface {
	GetQuote(ctx context.Context, pair domain.Pair) (domain.Quote, error)
}
