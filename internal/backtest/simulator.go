// Package backtest replays the ladder decision kernel over historical
// candles. The simulator is a synchronous fold with no I/O: running it twice
// on the same input yields the same result.
package backtest

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"rung/internal/domain"
)

// Result aggregates one simulation run.
type Result struct {
	// TotalProfit is the banked quote currency profit over the whole replay.
	TotalProfit decimal.Decimal
	// ProfitRate is TotalProfit relative to the capital a full ladder deploys.
	ProfitRate decimal.Decimal
	// TotalTrades counts completed exits; an open position at the end is
	// left unrealized and not counted.
	TotalTrades int
	Wins        int
	Losses      int
	// MaxDrawdownPercent is the largest peak-to-trough equity decline.
	MaxDrawdownPercent decimal.Decimal
}

// Simulator replays ladder rules over candles.
type Simulator struct {
	rules domain.Rules
}

// NewSimulator creates a simulator for validated rules.
func NewSimulator(rules domain.Rules) (*Simulator, error) {
	if rules.MaxSteps < 1 {
		return nil, errors.New("rules are not initialized")
	}
	return &Simulator{rules: rules}, nil
}

// Run replays the candles in order and returns aggregate statistics.
//
// Per bar: a flat ladder opens at the bar close; otherwise the stop loss is
// checked against the bar low before the profit target is checked against the
// bar high, so a bar spanning both thresholds resolves to the stop. This is a
// deliberate conservative approximation: with only OHLC data the adverse
// excursion is assumed to have happened first. If neither threshold is hit,
// the bar low may cross several rung thresholds at once and each crossed rung
// fills in turn.
//
// Fill prices are the threshold prices clamped into the bar range, so a bar
// that gaps past a threshold fills at the traded extreme instead of a price
// that never printed.
func (s *Simulator) Run(candles []domain.MarketCandle) Result {
	var (
		pos    = domain.NewPosition()
		banked = decimal.Zero
		peak   = decimal.Zero
		maxDD  = decimal.Zero
		trades, wins, losses int
	)

	for i := range candles {
		bar := &candles[i]
		price := bar.Close
		low := bar.EffectiveLow()
		high := bar.EffectiveHigh()

		if !pos.Active {
			// ignore invalid bars before the first fill
			if price.GreaterThan(decimal.Zero) {
				_ = pos.ApplyBuy(s.rules, price, s.rules.SizeForStep(1))
			}
		} else if stopPrice := s.rules.StopLossPrice(pos.AvgEntryPrice); low.LessThanOrEqual(stopPrice) {
			exitPrice := decimal.Min(stopPrice, high)
			banked = banked.Add(pos.UnrealizedPnL(exitPrice))
			pos.Reset()
			trades++
			losses++
		} else if profitPrice := s.rules.TakeProfitPrice(pos.AvgEntryPrice); high.GreaterThanOrEqual(profitPrice) {
			exitPrice := decimal.Max(profitPrice, low)
			banked = banked.Add(pos.UnrealizedPnL(exitPrice))
			pos.Reset()
			trades++
			wins++
		} else {
			for pos.Step < s.rules.MaxSteps {
				threshold := pos.NextBuyThreshold(s.rules)
				if low.GreaterThan(threshold) {
					break
				}
				fillPrice := decimal.Min(threshold, high)
				if err := pos.ApplyBuy(s.rules, fillPrice, s.rules.SizeForStep(pos.Step+1)); err != nil {
					break
				}
			}
		}

		equity := banked.Add(pos.UnrealizedPnL(price))
		if equity.GreaterThan(peak) {
			peak = equity
		}
		if peak.GreaterThan(decimal.Zero) {
			dd := peak.Sub(equity).Div(peak).Mul(decimal.NewFromInt(100))
			if dd.GreaterThan(maxDD) {
				maxDD = dd
			}
		}
	}

	profitRate := decimal.Zero
	if capital := s.rules.MaxCapital(); capital.GreaterThan(decimal.Zero) {
		profitRate = banked.Div(capital).Mul(decimal.NewFromInt(100))
	}

	return Result{
		TotalProfit:        banked,
		ProfitRate:         profitRate,
		TotalTrades:        trades,
		Wins:               wins,
		Losses:             losses,
		MaxDrawdownPercent: maxDD,
	}
}
