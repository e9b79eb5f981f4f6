package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const percentageMultiplier = 100

// Rules holds the immutable ladder parameters for one trading run.
// All percentages are expressed in percent of the reference price, not fractions.
type Rules struct {
	// MaxSteps caps the number of ladder rungs, including the initial buy.
	MaxSteps int
	// BuyIntervalPercent is the price drop from the last fill that arms the next rung.
	BuyIntervalPercent decimal.Decimal
	// TargetProfitPercent triggers a full exit when PnL rises to it.
	TargetProfitPercent decimal.Decimal
	// StopLossPercent triggers a full exit when PnL falls to its negation.
	StopLossPercent decimal.Decimal
	// InitialAmount is the quote currency size of the first buy.
	InitialAmount decimal.Decimal
	// PremiumRatePercent grows each successive buy geometrically.
	PremiumRatePercent decimal.Decimal
}

// NewRules creates validated ladder rules.
func NewRules(maxSteps int, buyIntervalPercent, targetProfitPercent, stopLossPercent, initialAmount, premiumRatePercent decimal.Decimal) (Rules, error) {
	if maxSteps < 1 {
		return Rules{}, fmt.Errorf("maxSteps must be >= 1, got %d", maxSteps)
	}
	if buyIntervalPercent.LessThanOrEqual(decimal.Zero) {
		return Rules{}, fmt.Errorf("buyIntervalPercent must be positive, got %s", buyIntervalPercent.String())
	}
	if targetProfitPercent.LessThanOrEqual(decimal.Zero) {
		return Rules{}, fmt.Errorf("targetProfitPercent must be positive, got %s", targetProfitPercent.String())
	}
	if stopLossPercent.LessThanOrEqual(decimal.Zero) {
		return Rules{}, fmt.Errorf("stopLossPercent must be positive, got %s", stopLossPercent.String())
	}
	if initialAmount.LessThanOrEqual(decimal.Zero) {
		return Rules{}, fmt.Errorf("initialAmount must be positive, got %s", initialAmount.String())
	}
	if premiumRatePercent.LessThan(decimal.Zero) {
		return Rules{}, fmt.Errorf("premiumRatePercent must be >= 0, got %s", premiumRatePercent.String())
	}

	return Rules{
		MaxSteps:            maxSteps,
		BuyIntervalPercent:  buyIntervalPercent,
		TargetProfitPercent: targetProfitPercent,
		StopLossPercent:     stopLossPercent,
		InitialAmount:       initialAmount,
		PremiumRatePercent:  premiumRatePercent,
	}, nil
}

// SizeForStep returns the quote amount for the given ladder rung.
// Step 1 always spends InitialAmount unscaled; each following rung grows
// by PremiumRatePercent.
func (r Rules) SizeForStep(step int) decimal.Decimal {
	if step < 1 {
		return decimal.Zero
	}

	growth := decimal.NewFromInt(1).Add(r.PremiumRatePercent.Div(decimal.NewFromInt(percentageMultiplier)))

	size := r.InitialAmount
	for i := 1; i < step; i++ {
		size = size.Mul(growth)
	}
	return size
}

// MaxCapital returns the total quote amount a fully deployed ladder spends.
func (r Rules) MaxCapital() decimal.Decimal {
	total := decimal.Zero
	for step := 1; step <= r.MaxSteps; step++ {
		total = total.Add(r.SizeForStep(step))
	}
	return total
}

// TakeProfitPrice returns the price at which the profit target is reached
// for the given average entry price.
func (r Rules) TakeProfitPrice(avgEntryPrice decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(r.TargetProfitPercent.Div(decimal.NewFromInt(percentageMultiplier)))
	return avgEntryPrice.Mul(factor)
}

// StopLossPrice returns the price at which the stop loss is reached
// for the given average entry price.
func (r Rules) StopLossPrice(avgEntryPrice decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(r.StopLossPercent.Div(decimal.NewFromInt(percentageMultiplier)))
	return avgEntryPrice.Mul(factor)
}
