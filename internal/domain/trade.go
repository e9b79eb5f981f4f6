package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

// String returns the string representation of the side.
func (s Side) String() string {
	if s == SideSell {
		return "sell"
	}
	return "buy"
}

// Quote is the latest market price together with the 24h change rate.
type Quote struct {
	Price         decimal.Decimal
	ChangePercent decimal.Decimal
}

// Fill is the result of a placed order. Quantity is in base currency.
// Implementations that cannot report the executed price leave Price zero
// and the caller falls back to the quoted price.
type Fill struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// TradeEvent describes an order the engine executed.
type TradeEvent struct {
	Side  Side
	Pair  Pair
	Step  int
	Price decimal.Decimal
	// Amount is quote currency for buys and base currency for sells.
	Amount decimal.Decimal
}

// String returns a human-readable string representation.
func (t *TradeEvent) String() string {
	return fmt.Sprintf("%s %s step %d at %s amount %s", t.Pair.String(), t.Side.String(), t.Step, t.Price.String(), t.Amount.String())
}

// TradeRecord is the append-only history entry emitted on every exit.
type TradeRecord struct {
	Time          time.Time       `json:"time"`
	Pair          string          `json:"pair"`
	Exit          ExitType        `json:"exit"`
	PnLPercent    decimal.Decimal `json:"pnl_percent"`
	PnLAmount     decimal.Decimal `json:"pnl_amount"`
	TotalInvested decimal.Decimal `json:"total_invested"`
	FinalStep     int             `json:"final_step"`
}
