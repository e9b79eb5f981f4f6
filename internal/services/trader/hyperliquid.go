package trader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	hyperliquid "github.com/sonirico/go-hyperliquid"

	"rung/internal/domain"
)

// HyperliquidTrader emulates market orders with IOC limit orders priced at
// a small slippage from the mid. Fills are not reported synchronously, so
// the caller falls back to the quoted price.
type HyperliquidTrader struct {
	ex   *hyperliquid.Exchange
	pair domain.Pair
}

const hyperliquidSlippage = 0.005 // 0.5%

func NewHyperliquidTrader(ex *hyperliquid.Exchange, pair domain.Pair) (*HyperliquidTrader, error) {
	if ex == nil {
		return nil, fmt.Errorf("hyperliquid exchange is nil")
	}
	return &HyperliquidTrader{ex: ex, pair: pair}, nil
}

// Buy spends amount of quote currency: the base size is derived from the
// slippage-adjusted price.
func (t *HyperliquidTrader) Buy(ctx context.Context, amount decimal.Decimal, clientOrderID string) (domain.Fill, error) {
	px, err := t.ex.SlippagePrice(ctx, t.pair.From, true, hyperliquidSlippage, nil)
	if err != nil {
		return domain.Fill{}, errors.Wrap(err, "slippage price")
	}
	if px <= 0 {
		return domain.Fill{}, fmt.Errorf("invalid slippage price for %s", t.pair.From)
	}

	amountFloat, _ := amount.Round(8).Float64()
	size := amountFloat / px

	return domain.Fill{}, t.placeOrder(ctx, true, px, size, clientOrderID)
}

// Sell disposes quantity of base currency.
func (t *HyperliquidTrader) Sell(ctx context.Context, quantity decimal.Decimal, clientOrderID string) (domain.Fill, error) {
	px, err := t.ex.SlippagePrice(ctx, t.pair.From, false, hyperliquidSlippage, nil)
	if err != nil {
		return domain.Fill{}, errors.Wrap(err, "slippage price")
	}

	size, _ := quantity.Round(8).Float64()

	return domain.Fill{}, t.placeOrder(ctx, false, px, size, clientOrderID)
}

func (t *HyperliquidTrader) placeOrder(ctx context.Context, isBuy bool, px, size float64, clientOrderID string) error {
	cloid := cloidFromID(clientOrderID)
	req := hyperliquid.CreateOrderRequest{
		Coin:          t.pair.From,
		IsBuy:         isBuy,
		Price:         px,
		Size:          size,
		ClientOrderID: &cloid,
		OrderType: hyperliquid.OrderType{
			Limit: &hyperliquid.LimitOrderType{Tif: hyperliquid.TifIoc},
		},
	}

	_, err := t.ex.Order(ctx, req, nil)
	return errors.Wrap(err, "failed to place hyperliquid order")
}

// cloidFromID converts a free-form client ID into a valid Hyperliquid cloid
// (0x + 32 hex chars).
func cloidFromID(id string) string {
	s := strings.TrimSpace(id)
	if s == "" {
		s = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	sum := sha256.Sum256([]byte(s))
	return "0x" + hex.EncodeToString(sum[:16])
}
