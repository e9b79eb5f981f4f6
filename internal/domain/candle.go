package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketCandle is one OHLCV bar produced by an exchange kline endpoint.
type MarketCandle struct {
	OpenTime  time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	CloseTime time.Time
}

// EffectiveHigh returns the bar high, falling back to the close when the
// source provided no intrabar extremes.
func (c *MarketCandle) EffectiveHigh() decimal.Decimal {
	if c.High.IsZero() {
		return c.Close
	}
	return c.High
}

// EffectiveLow returns the bar low, falling back to the close when the
// source provided no intrabar extremes.
func (c *MarketCandle) EffectiveLow() decimal.Decimal {
	if c.Low.IsZero() {
		return c.Close
	}
	return c.Low
}
