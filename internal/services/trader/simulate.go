package trader

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rung/internal/domain"
)

type quoter interface {
	GetQuote(ctx context.Context, pair domain.Pair) (domain.Quote, error)
}

// SimulateTrader is a paper spot trader with an in-memory wallet. Fills
// happen instantly at the current quoted price.
type SimulateTrader struct {
	mu     sync.Mutex
	pair   domain.Pair
	wallet map[string]decimal.Decimal
	pricer quoter
	logger *zap.Logger
}

const defaultPaperBalance = 100000

// NewSimulateTrader creates a paper trader funded with quote currency.
func NewSimulateTrader(pair domain.Pair, pricer quoter, logger *zap.Logger) (*SimulateTrader, error) {
	if pricer == nil {
		return nil, errors.New("pricer is required for SimulateTrader")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	trader := &SimulateTrader{
		pair:   pair,
		wallet: map[string]decimal.Decimal{pair.From: decimal.Zero, pair.To: decimal.NewFromInt(defaultPaperBalance)},
		pricer: pricer,
		logger: logger,
	}

	logger.Info("simulate trader init",
		zap.String("pair", pair.String()),
		zap.String("quote_balance", trader.wallet[pair.To].String()))

	return trader, nil
}

// Buy exchanges amount of quote currency for base at the current price.
func (t *SimulateTrader) Buy(ctx context.Context, amount decimal.Decimal, clientOrderID string) (domain.Fill, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.Fill{}, fmt.Errorf("buy amount must be positive, got %s", amount.String())
	}

	quote, err := t.pricer.GetQuote(ctx, t.pair)
	if err != nil {
		return domain.Fill{}, errors.Wrap(err, "failed to get price for simulated buy")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.wallet[t.pair.To].LessThan(amount) {
		return domain.Fill{}, fmt.Errorf("insufficient %s balance: have %s, need %s",
			t.pair.To, t.wallet[t.pair.To].String(), amount.String())
	}

	quantity := amount.Div(quote.Price)
	t.wallet[t.pair.To] = t.wallet[t.pair.To].Sub(amount)
	t.wallet[t.pair.From] = t.wallet[t.pair.From].Add(quantity)

	t.logger.Debug("simulated buy",
		zap.String("order_id", clientOrderID),
		zap.String("price", quote.Price.String()),
		zap.String("amount", amount.String()))

	return domain.Fill{Price: quote.Price, Quantity: quantity}, nil
}

// Sell exchanges quantity of base currency for quote at the current price.
func (t *SimulateTrader) Sell(ctx context.Context, quantity decimal.Decimal, clientOrderID string) (domain.Fill, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return domain.Fill{}, fmt.Errorf("sell quantity must be positive, got %s", quantity.String())
	}

	quote, err := t.pricer.GetQuote(ctx, t.pair)
	if err != nil {
		return domain.Fill{}, errors.Wrap(err, "failed to get price for simulated sell")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.wallet[t.pair.From].LessThan(quantity) {
		return domain.Fill{}, fmt.Errorf("insufficient %s balance: have %s, need %s",
			t.pair.From, t.wallet[t.pair.From].String(), quantity.String())
	}

	proceeds := quantity.Mul(quote.Price)
	t.wallet[t.pair.From] = t.wallet[t.pair.From].Sub(quantity)
	t.wallet[t.pair.To] = t.wallet[t.pair.To].Add(proceeds)

	t.logger.Debug("simulated sell",
		zap.String("order_id", clientOrderID),
		zap.String("price", quote.Price.String()),
		zap.String("quantity", quantity.String()))

	return domain.Fill{Price: quote.Price, Quantity: quantity}, nil
}

// Balance returns the simulated wallet balance for a currency.
func (t *SimulateTrader) Balance(currency string) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.wallet[currency]
}
