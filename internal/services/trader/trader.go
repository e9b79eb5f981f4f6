// Package trader places market orders on the supported exchanges.
package trader

import (
	"context"

	"github.com/shopspring/decimal"

	"rung/internal/domain"
)

// Trader places market orders for one trading pair. Buy spends an amount of
// quote currency; Sell disposes a quantity of base currency. Implementations
// return a zero Fill price when the exchange does not report execution
// details synchronously.
type Trader interface {
	Buy(ctx context.Context, amount decimal.Decimal, clientOrderID string) (domain.Fill, error)
	Sell(ctx context.Context, quantity decimal.Decimal, clientOrderID string) (domain.Fill, error)
}
