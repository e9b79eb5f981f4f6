package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExitType classifies how a position is closed.
type ExitType int

const (
	ExitNone ExitType = iota
	ExitProfit
	ExitLoss
)

// String returns the string representation of the exit type.
func (e ExitType) String() string {
	switch e {
	case ExitProfit:
		return "profit"
	case ExitLoss:
		return "loss"
	default:
		return "none"
	}
}

// Position is the mutable state of one open ladder. It is owned exclusively
// by a single engine or simulator instance and never shared across positions.
type Position struct {
	// Active reports whether a ladder is open.
	Active bool
	// Step counts fills, including the initial buy.
	Step int
	// AvgEntryPrice is TotalInvested/TotalQuantity, recomputed on every fill.
	AvgEntryPrice decimal.Decimal
	// TotalQuantity is the accumulated base currency quantity.
	TotalQuantity decimal.Decimal
	// TotalInvested is the accumulated quote currency spent.
	TotalInvested decimal.Decimal
	// LastBuyPrice is the price of the most recent fill; the next rung
	// threshold is derived from it, not from the average.
	LastBuyPrice decimal.Decimal
}

// NewPosition creates an empty inactive position.
func NewPosition() Position {
	return Position{
		AvgEntryPrice: decimal.Zero,
		TotalQuantity: decimal.Zero,
		TotalInvested: decimal.Zero,
		LastBuyPrice:  decimal.Zero,
	}
}

// ApplyBuy records a fill: accumulates invested amount and quantity,
// recomputes the average entry price and advances the step. The first fill
// activates the position. Fails without mutating when the ladder is full.
func (p *Position) ApplyBuy(rules Rules, price, amount decimal.Decimal) error {
	if p.Step >= rules.MaxSteps {
		return fmt.Errorf("ladder is full: step %d of %d", p.Step, rules.MaxSteps)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("fill price must be positive, got %s", price.String())
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("fill amount must be positive, got %s", amount.String())
	}

	p.TotalInvested = p.TotalInvested.Add(amount)
	p.TotalQuantity = p.TotalQuantity.Add(amount.Div(price))
	p.AvgEntryPrice = p.TotalInvested.Div(p.TotalQuantity)
	p.LastBuyPrice = price
	p.Step++
	p.Active = true

	return nil
}

// Reset returns the position to its empty inactive state.
func (p *Position) Reset() {
	*p = NewPosition()
}

// NextBuyThreshold returns the price the market must fall to before the next
// rung fires. Successive thresholds compound multiplicatively because each
// is taken from the last fill, not from the average.
func (p *Position) NextBuyThreshold(rules Rules) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(rules.BuyIntervalPercent.Div(decimal.NewFromInt(percentageMultiplier)))
	return p.LastBuyPrice.Mul(factor)
}

// CanScaleIn reports whether the position is eligible for another rung
// at the given price.
func (p *Position) CanScaleIn(rules Rules, price decimal.Decimal) bool {
	return p.Active && p.Step < rules.MaxSteps && price.LessThanOrEqual(p.NextBuyThreshold(rules))
}

// EvaluateExit decides whether the position should be closed at the given
// price. The profit check runs first, so a single tick that jumps past both
// bounds always resolves to ExitProfit.
func (p *Position) EvaluateExit(rules Rules, price decimal.Decimal) ExitType {
	if !p.Active {
		return ExitNone
	}

	pnl := PnLPercent(p.AvgEntryPrice, price)
	if pnl.GreaterThanOrEqual(rules.TargetProfitPercent) {
		return ExitProfit
	}
	if pnl.LessThanOrEqual(rules.StopLossPercent.Neg()) {
		return ExitLoss
	}
	return ExitNone
}

// UnrealizedPnL returns the mark-to-market result at the given price.
func (p *Position) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	if !p.Active {
		return decimal.Zero
	}
	return p.TotalQuantity.Mul(price).Sub(p.TotalInvested)
}

// PnLPercent returns the profit percentage of price over the average entry
// price. Zero when there is no position (avg is zero).
func PnLPercent(avgEntryPrice, price decimal.Decimal) decimal.Decimal {
	if avgEntryPrice.IsZero() {
		return decimal.Zero
	}
	return price.Sub(avgEntryPrice).Div(avgEntryPrice).Mul(decimal.NewFromInt(percentageMultiplier))
}

// PercentageDiff returns percentage difference between current and reference values.
func PercentageDiff(current, reference decimal.Decimal) decimal.Decimal {
	if reference.IsZero() {
		return decimal.Zero
	}
	return current.Sub(reference).Div(reference).Mul(decimal.NewFromInt(percentageMultiplier))
}
