package engine

import (
	"github.com/shopspring/decimal"

	"rung/internal/domain"
)

// Snapshot is a read-only view of the engine for presentation. Decision
// state never leaks mutably: the position is copied by value.
type Snapshot struct {
	Pair     domain.Pair
	Rules    domain.Rules
	Position domain.Position
	// LastPrice and ChangePercent mirror the most recent quote seen by any
	// tick, also while the position is inactive.
	LastPrice     decimal.Decimal
	ChangePercent decimal.Decimal
	HasQuote      bool
	// PnLPercent is the unrealized profit at LastPrice, zero when flat.
	PnLPercent decimal.Decimal
	// NextBuyThreshold is the price that arms the next rung, zero when the
	// ladder is flat or full.
	NextBuyThreshold decimal.Decimal
}

// Snapshot returns the current engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Pair:          e.pair,
		Rules:         e.rules,
		Position:      e.pos,
		LastPrice:     e.lastQuote.Price,
		ChangePercent: e.lastQuote.ChangePercent,
		HasQuote:      e.hasQuote,
	}
	if e.pos.Active {
		s.PnLPercent = domain.PnLPercent(e.pos.AvgEntryPrice, e.lastQuote.Price)
		if e.pos.Step < e.rules.MaxSteps {
			s.NextBuyThreshold = e.pos.NextBuyThreshold(e.rules)
		}
	}
	return s
}
