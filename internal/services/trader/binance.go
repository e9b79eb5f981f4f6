package trader

import (
	"context"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"rung/internal/domain"
)

// BinanceTrader places spot market orders on Binance.
type BinanceTrader struct {
	client *binance.Client
	pair   domain.Pair
}

func NewBinanceTrader(client *binance.Client, pair domain.Pair) *BinanceTrader {
	return &BinanceTrader{client: client, pair: pair}
}

// Buy spends amount of quote currency at market.
func (t *BinanceTrader) Buy(ctx context.Context, amount decimal.Decimal, clientOrderID string) (domain.Fill, error) {
	amount = amount.RoundFloor(8)

	resp, err := t.client.NewCreateOrderService().Symbol(t.pair.Symbol()).
		Side(binance.SideTypeBuy).Type(binance.OrderTypeMarket).
		QuoteOrderQty(amount.String()).
		NewClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		return domain.Fill{}, errors.Wrap(err, "failed to create buy order")
	}

	return fillFromResponse(resp)
}

// Sell disposes quantity of base currency at market.
func (t *BinanceTrader) Sell(ctx context.Context, quantity decimal.Decimal, clientOrderID string) (domain.Fill, error) {
	quantity = quantity.RoundFloor(8)

	resp, err := t.client.NewCreateOrderService().Symbol(t.pair.Symbol()).
		Side(binance.SideTypeSell).Type(binance.OrderTypeMarket).
		Quantity(quantity.String()).
		NewClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		return domain.Fill{}, errors.Wrap(err, "failed to create sell order")
	}

	return fillFromResponse(resp)
}

// fillFromResponse derives the average execution price from the order
// response. A zero fill is not an error: the caller falls back to the
// quoted price.
func fillFromResponse(resp *binance.CreateOrderResponse) (domain.Fill, error) {
	executed, err := decimal.NewFromString(resp.ExecutedQuantity)
	if err != nil || executed.IsZero() {
		return domain.Fill{}, nil
	}
	quote, err := decimal.NewFromString(resp.CummulativeQuoteQuantity)
	if err != nil || quote.IsZero() {
		return domain.Fill{Quantity: executed}, nil
	}

	return domain.Fill{
		Price:    quote.Div(executed),
		Quantity: executed,
	}, nil
}
