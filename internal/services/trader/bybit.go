package trader

import (
	"context"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"rung/internal/domain"
)

// BybitTrader places spot market orders on Bybit V5. The create-order
// response carries no execution details, so fills are reported without a
// price and the caller falls back to the quoted price.
type BybitTrader struct {
	client *bybit.Client
	pair   domain.Pair
}

func NewBybitTrader(client *bybit.Client, pair domain.Pair) *BybitTrader {
	return &BybitTrader{client: client, pair: pair}
}

// Buy spends amount of quote currency at market. For spot market buys the
// V5 API interprets Qty as quote currency.
func (t *BybitTrader) Buy(ctx context.Context, amount decimal.Decimal, clientOrderID string) (domain.Fill, error) {
	amount = amount.RoundFloor(4)

	_, err := t.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:    "spot",
		Symbol:      bybit.SymbolV5(t.pair.Symbol()),
		Side:        bybit.SideBuy,
		OrderType:   bybit.OrderTypeMarket,
		Qty:         amount.String(),
		OrderLinkID: &clientOrderID,
	})
	if err != nil {
		return domain.Fill{}, errors.Wrap(err, "failed to create buy order")
	}
	return domain.Fill{}, nil
}

// Sell disposes quantity of base currency at market.
func (t *BybitTrader) Sell(ctx context.Context, quantity decimal.Decimal, clientOrderID string) (domain.Fill, error) {
	quantity = quantity.RoundFloor(4)

	_, err := t.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:    "spot",
		Symbol:      bybit.SymbolV5(t.pair.Symbol()),
		Side:        bybit.SideSell,
		OrderType:   bybit.OrderTypeMarket,
		Qty:         quantity.String(),
		OrderLinkID: &clientOrderID,
	})
	if err != nil {
		return domain.Fill{}, errors.Wrap(err, "failed to create sell order")
	}
	return domain.Fill{}, nil
}
