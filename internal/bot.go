package internal

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"rung/config"
	"rung/internal/domain"
	"rung/internal/engine"
	"rung/internal/services/marketdata"
)

const marketContextCandles = 100

// Bot runs one averaging ladder on one pair: it opens the first rung, polls
// the price and feeds ticks to the engine, and opens a fresh ladder after
// every exit.
type Bot struct {
	engine    *engine.Engine
	collector *marketdata.Collector
	conf      config.Config
	logger    *zap.Logger
}

type recorder interface {
	Save(record domain.TradeRecord) error
}

// NewBot wires platform services for the configured exchange and builds the
// engine. records may be nil when no trade history is kept.
func NewBot(conf config.Config, client any, records recorder, logger *zap.Logger) (*Bot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := NewServiceProvider(client, logger)
	if err != nil {
		return nil, err
	}

	priceSvc, err := provider.Pricer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pricer")
	}
	tradeSvc, err := provider.Trader(conf.Pair)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create trader")
	}

	eng, err := engine.New(logger, conf.Pair, conf.Rules, priceSvc, tradeSvc, records)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create engine")
	}

	var coll *marketdata.Collector
	if klines, err := provider.KlineProvider(); err == nil {
		coll = marketdata.NewCollector(klines, conf.Pair)
	}

	return &Bot{
		engine:    eng,
		collector: coll,
		conf:      conf,
		logger:    logger,
	}, nil
}

// Run opens the ladder and polls the market until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logMarketContext(ctx)

	if _, err := b.engine.Start(ctx); err != nil {
		return errors.Wrapf(err, "failed to open position for %s", b.conf.Pair.String())
	}

	ticker := time.NewTicker(b.conf.PollPriceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.engine.Stop()
			return ctx.Err()
		case <-ticker.C:
			if _, err := b.engine.OnTick(ctx); err != nil {
				b.logger.Error("tick failed",
					zap.String("pair", b.conf.Pair.String()),
					zap.Error(err))
				continue
			}

			if snap := b.engine.Snapshot(); !snap.Position.Active {
				if _, err := b.engine.Start(ctx); err != nil {
					b.logger.Error("failed to reopen position",
						zap.String("pair", b.conf.Pair.String()),
						zap.Error(err))
				}
			}
		}
	}
}

// logMarketContext reports indicator values before trading starts. Market
// context is informational, failures never block the run.
func (b *Bot) logMarketContext(ctx context.Context) {
	if b.collector == nil {
		return
	}

	candles, err := b.collector.FetchCandles(ctx, "1h", marketContextCandles)
	if err != nil {
		b.logger.Warn("market context unavailable", zap.Error(err))
		return
	}

	mc, err := marketdata.ComputeMarketContext(candles)
	if err != nil {
		b.logger.Warn("market context unavailable", zap.Error(err))
		return
	}

	b.logger.Info("market context",
		zap.String("pair", b.conf.Pair.String()),
		zap.String("last_close", mc.LastClose.String()),
		zap.String("ema_fast", mc.EMAFast.StringFixed(2)),
		zap.String("ema_slow", mc.EMASlow.StringFixed(2)),
		zap.String("rsi", mc.RSI.StringFixed(2)),
		zap.String("atr", mc.ATR.StringFixed(2)),
		zap.Bool("uptrend", mc.Uptrend()))
}
