package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"rung/internal/domain"
)

func syntheticCandles(n int, start, step float64) []domain.MarketCandle {
	candles := make([]domain.MarketCandle, n)
	price := start
	for i := range candles {
		p := decimal.NewFromFloat(price)
		candles[i] = domain.MarketCandle{
			OpenTime:  time.Unix(int64(i)*60, 0),
			Open:      p,
			High:      p.Add(decimal.NewFromInt(1)),
			Low:       p.Sub(decimal.NewFromInt(1)),
			Close:     p,
			Volume:    decimal.NewFromInt(10),
			CloseTime: time.Unix(int64(i+1)*60, 0),
		}
		price += step
	}
	return candles
}

func TestComputeMarketContextUptrend(t *testing.T) {
	candles := syntheticCandles(120, 100, 0.5)

	mc, err := ComputeMarketContext(candles)
	require.NoError(t, err)

	require.True(t, mc.Uptrend())
	require.True(t, mc.RSI.GreaterThan(decimal.NewFromInt(50)), "rising series should have RSI above 50, got %s", mc.RSI)
	require.True(t, mc.ATR.IsPositive())
	require.True(t, mc.LastClose.Equal(candles[len(candles)-1].Close))
}

func TestComputeMarketContextDowntrend(t *testing.T) {
	candles := syntheticCandles(120, 200, -0.5)

	mc, err := ComputeMarketContext(candles)
	require.NoError(t, err)

	require.False(t, mc.Uptrend())
	require.True(t, mc.RSI.LessThan(decimal.NewFromInt(50)))
}

func TestComputeMarketContextNotEnoughData(t *testing.T) {
	_, err := ComputeMarketContext(syntheticCandles(10, 100, 1))
	require.Error(t, err)
}

type stubKlineProvider struct {
	candles []domain.MarketCandle
	err     error
}

func (s *stubKlineProvider) GetKlines(context.Context, domain.Pair, string, int) ([]domain.MarketCandle, error) {
	return s.candles, s.err
}

func TestCollectorFetchCandles(t *testing.T) {
	pair := domain.Pair{From: "BTC", To: "USDT"}
	candles := syntheticCandles(5, 100, 1)

	c := NewCollector(&stubKlineProvider{candles: candles}, pair)
	got, err := c.FetchCandles(context.Background(), "1h", 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
}

func TestCollectorFetchCandlesEmpty(t *testing.T) {
	pair := domain.Pair{From: "BTC", To: "USDT"}

	c := NewCollector(&stubKlineProvider{}, pair)
	_, err := c.FetchCandles(context.Background(), "1h", 5)
	require.Error(t, err)
}

func TestParseIntervalToDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"1m":  time.Minute,
		"15m": 15 * time.Minute,
		"4h":  4 * time.Hour,
		"1d":  24 * time.Hour,
	}
	for in, want := range cases {
		got, err := parseIntervalToDuration(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	for _, bad := range []string{"", "h", "1w", "x5m"} {
		_, err := parseIntervalToDuration(bad)
		require.Error(t, err, "interval %q should be rejected", bad)
	}
}
