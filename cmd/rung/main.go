// Command rung runs a price-averaging ladder bot on spot markets.
// It supports Binance, Bybit, Hyperliquid and a paper trading mode, and can
// replay the strategy over historical candles instead of trading live.
//
// Usage:
//
//	rung --config config.yaml
//	rung --setup
//	rung --backtest --pair BTC_USDT --candle-interval 1h --candle-limit 500
//	rung (uses CLI arguments)
//
// Required environment variables:
//
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
//	For Hyperliquid: HYPERLIQUID_PRIVATE_KEY, optionally HYPERLIQUID_API_URL
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rung/config"
	"rung/internal"
	"rung/internal/backtest"
	"rung/internal/clients"
	"rung/internal/services/marketdata"
	"rung/internal/setup"
	"rung/internal/storage/tradelog"
)

const defaultHyperliquidAPIURL = "https://api.hyperliquid.xyz"

func main() {
	flag.Bool("setup", false, "launch the interactive config wizard")
	backtestMode := flag.Bool("backtest", false, "replay the strategy over historical candles instead of trading")
	candleInterval := flag.String("candle-interval", "1h", "backtest candle interval, example: 1h")
	candleLimit := flag.Int("candle-limit", 500, "number of historical candles to replay")

	var configs []config.Config
	var err error
	// the wizard path never reaches flag.Parse, so --setup is detected by hand
	if hasFlag("--setup") || hasFlag("-setup") {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		configs, err = config.FromFile(setup.GeneratedConfigFile)
	} else {
		configs, err = config.Get()
	}
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if *backtestMode {
		runBacktests(logger, configs, *candleInterval, *candleLimit)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, err := tradelog.NewWALStore(tradelog.DefaultDir)
	if err != nil {
		logger.Fatal("failed to open trade log", zap.Error(err))
	}
	defer records.Close()

	g, ctx := errgroup.WithContext(ctx)
	for _, conf := range configs {
		client, err := platformClient(conf.Platform)
		if err != nil {
			logger.Fatal("failed to create exchange client",
				zap.String("platform", conf.Platform), zap.Error(err))
		}

		bot, err := internal.NewBot(conf, client, records, logger)
		if err != nil {
			logger.Fatal("failed to create bot",
				zap.String("pair", conf.Pair.String()), zap.Error(err))
		}

		g.Go(func() error {
			return bot.Run(ctx)
		})
		logger.Info("started",
			zap.String("platform", conf.Platform),
			zap.String("pair", conf.Pair.String()))
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error(err.Error())
	}
}

func platformClient(platform string) (any, error) {
	switch platform {
	case "binance":
		apiKey := os.Getenv("BINANCE_API_KEY")
		apiSecret := os.Getenv("BINANCE_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			log.Fatal("BINANCE_API_KEY and BINANCE_API_SECRET environment variables must be set")
		}
		return clients.NewBinanceClient(apiKey, apiSecret), nil
	case "bybit":
		apiKey := os.Getenv("BYBIT_API_KEY")
		apiSecret := os.Getenv("BYBIT_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			log.Fatal("BYBIT_API_KEY and BYBIT_API_SECRET environment variables must be set")
		}
		return clients.NewBybitClient(apiKey, apiSecret), nil
	case "hyperliquid":
		privateKey := os.Getenv("HYPERLIQUID_PRIVATE_KEY")
		if privateKey == "" {
			log.Fatal("HYPERLIQUID_PRIVATE_KEY environment variable must be set")
		}
		apiURL := os.Getenv("HYPERLIQUID_API_URL")
		if apiURL == "" {
			apiURL = defaultHyperliquidAPIURL
		}
		return clients.NewHyperliquidClient(privateKey, apiURL)
	case "simulate":
		return clients.NewSimulateClient(), nil
	default:
		log.Fatalf("unsupported platform: %s", platform)
		return nil, nil
	}
}

// runBacktests replays each configured strategy over public Binance candles.
func runBacktests(logger *zap.Logger, configs []config.Config, interval string, limit int) {
	ctx := context.Background()
	client := clients.NewSimulateClient()

	for _, conf := range configs {
		collector := marketdata.NewCollector(marketdata.NewBinanceKlineProvider(client.BinanceClient()), conf.Pair)

		candles, err := collector.FetchCandles(ctx, interval, limit)
		if err != nil {
			logger.Fatal("failed to fetch candles",
				zap.String("pair", conf.Pair.String()), zap.Error(err))
		}

		if mc, err := marketdata.ComputeMarketContext(candles); err == nil {
			logger.Info("market context",
				zap.String("pair", conf.Pair.String()),
				zap.String("rsi", mc.RSI.StringFixed(2)),
				zap.Bool("uptrend", mc.Uptrend()))
		}

		sim, err := backtest.NewSimulator(conf.Rules)
		if err != nil {
			logger.Fatal("failed to create simulator", zap.Error(err))
		}

		result := sim.Run(candles)
		logger.Info("backtest finished",
			zap.String("pair", conf.Pair.String()),
			zap.String("interval", interval),
			zap.Int("candles", len(candles)),
			zap.String("total_profit", result.TotalProfit.StringFixed(2)),
			zap.String("profit_rate_percent", result.ProfitRate.StringFixed(2)),
			zap.Int("trades", result.TotalTrades),
			zap.Int("wins", result.Wins),
			zap.Int("losses", result.Losses),
			zap.String("max_drawdown_percent", result.MaxDrawdownPercent.StringFixed(2)))
	}
}

func hasFlag(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}
