package marketdata

import (
	"context"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"

	"rung/internal/domain"
)

// BybitKlineProvider implements KlineProvider for Bybit.
type BybitKlineProvider struct {
	client *bybit.Client
}

func NewBybitKlineProvider(client *bybit.Client) *BybitKlineProvider {
	return &BybitKlineProvider{client: client}
}

// GetKlines fetches kline data from Bybit.
func (p *BybitKlineProvider) GetKlines(context.Context, domain.Pair, string, int) ([]domain.MarketCandle, error) {
	return nil, errors.New("Bybit kline provider is not yet implemented, use Binance or Hyperliquid for historical data")
}
