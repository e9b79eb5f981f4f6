// Package engine drives one live ladder position from price ticks.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rung/internal/domain"
)

var (
	// ErrAlreadyActive is returned by Start when a ladder is already open.
	ErrAlreadyActive = errors.New("position is already active")
	// ErrNotActive is returned when an operation needs an open ladder.
	ErrNotActive = errors.New("no active position")
	// ErrNoPrice is returned when no market price could be obtained.
	ErrNoPrice = errors.New("market data unavailable")
)

type pricer interface {
	GetQuote(ctx context.Context, pair domain.Pair) (domain.Quote, error)
}

type trader interface {
	// Buy places a market buy order spending amount of quote currency.
	Buy(ctx context.Context, amount decimal.Decimal, clientOrderID string) (domain.Fill, error)
	// Sell places a market sell order for quantity of base currency.
	Sell(ctx context.Context, quantity decimal.Decimal, clientOrderID string) (domain.Fill, error)
}

type recorder interface {
	Save(record domain.TradeRecord) error
}

// Engine owns one ladder position. All entry points share one mutex, so a
// tick arriving while a previous tick still places an order waits for it;
// decisions never interleave and at most one order intent is in flight.
type Engine struct {
	mu      sync.Mutex
	pair    domain.Pair
	rules   domain.Rules
	pos     domain.Position
	pricer  pricer
	trader  trader
	records recorder
	l       *zap.Logger

	lastQuote domain.Quote
	hasQuote  bool
}

// New creates an engine for the pair. The records store may be nil when the
// caller keeps no trade history.
func New(l *zap.Logger, pair domain.Pair, rules domain.Rules, pricer pricer, trader trader, records recorder) (*Engine, error) {
	if pricer == nil {
		return nil, errors.New("pricer is required")
	}
	if trader == nil {
		return nil, errors.New("trader is required")
	}
	if l == nil {
		l = zap.NewNop()
	}

	return &Engine{
		pair:    pair,
		rules:   rules,
		pos:     domain.NewPosition(),
		pricer:  pricer,
		trader:  trader,
		records: records,
		l:       l,
	}, nil
}

// Start opens the ladder with the first rung at the current market price.
func (e *Engine) Start(ctx context.Context) (*domain.TradeEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pos.Active {
		return nil, ErrAlreadyActive
	}

	quote, err := e.pricer.GetQuote(ctx, e.pair)
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrNoPrice, "pricer failed for %s: %v", e.pair.String(), err)
	}
	e.cacheQuote(quote)

	return e.placeBuy(ctx, quote.Price, 1)
}

// OnTick is the single evaluation entry point, invoked once per price update.
// Exits always take priority over scale-ins. A failed scale-in leaves the
// position untouched; the next tick repeats the same threshold check. A
// failed exit keeps the position active so the exit is retried on the next
// tick instead of abandoning an unsold position.
func (e *Engine) OnTick(ctx context.Context) (*domain.TradeEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	quote, err := e.pricer.GetQuote(ctx, e.pair)
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrNoPrice, "pricer failed for %s: %v", e.pair.String(), err)
	}
	e.cacheQuote(quote)

	if !e.pos.Active {
		return nil, nil
	}

	if exit := e.pos.EvaluateExit(e.rules, quote.Price); exit != domain.ExitNone {
		return e.placeExit(ctx, quote.Price, exit)
	}

	if e.pos.CanScaleIn(e.rules, quote.Price) {
		return e.placeBuy(ctx, quote.Price, e.pos.Step+1)
	}

	return nil, nil
}

// Stop abandons the ladder without placing any order. The caller is
// responsible for manual liquidation of whatever quantity is held.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pos.Active {
		e.l.Info("position abandoned by stop",
			zap.Int("step", e.pos.Step),
			zap.String("quantity", e.pos.TotalQuantity.String()))
	}
	e.pos.Reset()
}

func (e *Engine) placeBuy(ctx context.Context, price decimal.Decimal, step int) (*domain.TradeEvent, error) {
	amount := e.rules.SizeForStep(step)
	orderID := uuid.NewString()

	fill, err := e.trader.Buy(ctx, amount, orderID)
	if err != nil {
		// state untouched: the same threshold check reruns next tick
		return nil, pkgerrors.Wrapf(err, "buy failed for %s step %d amount %s", e.pair.String(), step, amount.String())
	}

	fillPrice := fill.Price
	if fillPrice.LessThanOrEqual(decimal.Zero) {
		fillPrice = price
	}

	if err := e.pos.ApplyBuy(e.rules, fillPrice, amount); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to apply buy fill")
	}

	e.l.Info("ladder buy executed",
		zap.String("pair", e.pair.String()),
		zap.Int("step", e.pos.Step),
		zap.String("price", fillPrice.String()),
		zap.String("amount", amount.String()),
		zap.String("avg_entry_price", e.pos.AvgEntryPrice.String()))

	return &domain.TradeEvent{
		Side:   domain.SideBuy,
		Pair:   e.pair,
		Step:   e.pos.Step,
		Price:  fillPrice,
		Amount: amount,
	}, nil
}

func (e *Engine) placeExit(ctx context.Context, price decimal.Decimal, exit domain.ExitType) (*domain.TradeEvent, error) {
	quantity := e.pos.TotalQuantity
	orderID := uuid.NewString()

	fill, err := e.trader.Sell(ctx, quantity, orderID)
	if err != nil {
		// position stays active, exit retried on the next tick
		return nil, pkgerrors.Wrapf(err, "exit sell failed for %s quantity %s", e.pair.String(), quantity.String())
	}

	fillPrice := fill.Price
	if fillPrice.LessThanOrEqual(decimal.Zero) {
		fillPrice = price
	}

	record := domain.TradeRecord{
		Time:          time.Now(),
		Pair:          e.pair.String(),
		Exit:          exit,
		PnLPercent:    domain.PnLPercent(e.pos.AvgEntryPrice, fillPrice),
		PnLAmount:     e.pos.UnrealizedPnL(fillPrice),
		TotalInvested: e.pos.TotalInvested,
		FinalStep:     e.pos.Step,
	}
	finalStep := e.pos.Step
	e.pos.Reset()

	if e.records != nil {
		if err := e.records.Save(record); err != nil {
			e.l.Error("failed to persist trade record", zap.Error(err))
		}
	}

	e.l.Info("position closed",
		zap.String("pair", e.pair.String()),
		zap.String("exit", exit.String()),
		zap.String("price", fillPrice.String()),
		zap.String("pnl_percent", record.PnLPercent.String()),
		zap.String("pnl_amount", record.PnLAmount.String()),
		zap.Int("final_step", finalStep))

	return &domain.TradeEvent{
		Side:   domain.SideSell,
		Pair:   e.pair,
		Step:   finalStep,
		Price:  fillPrice,
		Amount: quantity,
	}, nil
}

func (e *Engine) cacheQuote(quote domain.Quote) {
	e.lastQuote = quote
	e.hasQuote = true
}
