package marketdata

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/cinar/indicator/v2/volatility"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"rung/internal/domain"
)

const (
	emaFastPeriod = 20
	emaSlowPeriod = 50
	rsiPeriod     = 14
	atrPeriod     = 14
)

// MarketContext is a summary of recent market conditions derived from candles.
// It is informational only and does not feed the averaging logic.
type MarketContext struct {
	LastClose decimal.Decimal
	EMAFast   decimal.Decimal
	EMASlow   decimal.Decimal
	RSI       decimal.Decimal
	ATR       decimal.Decimal
}

// Uptrend reports whether the fast EMA is above the slow EMA.
func (m MarketContext) Uptrend() bool {
	return m.EMAFast.GreaterThan(m.EMASlow)
}

// ComputeMarketContext derives indicator values from the given candles.
// Needs at least emaSlowPeriod candles.
func ComputeMarketContext(candles []domain.MarketCandle) (MarketContext, error) {
	if len(candles) < emaSlowPeriod {
		return MarketContext{}, errors.Errorf("not enough candles for market context: need %d, got %d", emaSlowPeriod, len(candles))
	}

	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		closes[i], _ = c.Close.Float64()
		highs[i], _ = c.EffectiveHigh().Float64()
		lows[i], _ = c.EffectiveLow().Float64()
	}

	emaFast, err := lastValue(computeEMA(closes, emaFastPeriod))
	if err != nil {
		return MarketContext{}, errors.Wrap(err, "failed to compute fast EMA")
	}
	emaSlow, err := lastValue(computeEMA(closes, emaSlowPeriod))
	if err != nil {
		return MarketContext{}, errors.Wrap(err, "failed to compute slow EMA")
	}
	rsiVal, err := lastValue(computeRSI(closes, rsiPeriod))
	if err != nil {
		return MarketContext{}, errors.Wrap(err, "failed to compute RSI")
	}
	atrVal, err := lastValue(computeATR(highs, lows, closes, atrPeriod))
	if err != nil {
		return MarketContext{}, errors.Wrap(err, "failed to compute ATR")
	}

	return MarketContext{
		LastClose: candles[len(candles)-1].Close,
		EMAFast:   decimal.NewFromFloat(emaFast),
		EMASlow:   decimal.NewFromFloat(emaSlow),
		RSI:       decimal.NewFromFloat(rsiVal),
		ATR:       decimal.NewFromFloat(atrVal),
	}, nil
}

func computeEMA(closes []float64, period int) []float64 {
	ema := trend.NewEmaWithPeriod[float64](period)
	return helper.ChanToSlice(ema.Compute(helper.SliceToChan(closes)))
}

func computeRSI(closes []float64, period int) []float64 {
	rsi := momentum.NewRsiWithPeriod[float64](period)
	return helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closes)))
}

func computeATR(highs, lows, closes []float64, period int) []float64 {
	atr := volatility.NewAtrWithPeriod[float64](period)
	out := atr.Compute(helper.SliceToChan(highs), helper.SliceToChan(lows), helper.SliceToChan(closes))
	return helper.ChanToSlice(out)
}

func lastValue(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("indicator produced no values")
	}
	return values[len(values)-1], nil
}
