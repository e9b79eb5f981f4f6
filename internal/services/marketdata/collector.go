// Package marketdata collects historical candles from the supported
// exchanges and derives summary indicators from them.
package marketdata

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"rung/internal/domain"
)

const fetchTimeout = 30 * time.Second

// KlineProvider fetches historical candle data for a trading pair.
// interval is an exchange-style duration string ("1m", "5m", "1h", "4h", "1d")
// and limit caps the number of candles returned.
type KlineProvider interface {
	GetKlines(ctx context.Context, pair domain.Pair, interval string, limit int) ([]domain.MarketCandle, error)
}

// Collector fetches candles for one pair.
type Collector struct {
	provider KlineProvider
	pair     domain.Pair
}

func NewCollector(provider KlineProvider, pair domain.Pair) *Collector {
	return &Collector{provider: provider, pair: pair}
}

// FetchCandles fetches up to limit candles for the interval.
func (c *Collector) FetchCandles(ctx context.Context, interval string, limit int) ([]domain.MarketCandle, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	candles, err := c.provider.GetKlines(ctxWithTimeout, c.pair, interval, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch klines for %s", c.pair.String())
	}
	if len(candles) == 0 {
		return nil, errors.Errorf("no kline data returned for %s %s", c.pair.String(), interval)
	}

	return candles, nil
}
