// Package config loads bot configuration from a YAML file or CLI flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"rung/internal/domain"
)

const (
	defaultMaxSteps            = 10
	defaultBuyIntervalPercent  = "2"
	defaultTargetProfitPercent = "3"
	defaultStopLossPercent     = "15"
	defaultInitialAmount       = "100"
	defaultPremiumRatePercent  = "5"
)

// Config is one bot instance configuration.
type Config struct {
	Platform          string
	Pair              domain.Pair
	PollPriceInterval time.Duration
	Rules             domain.Rules
}

// ConfigTmp mirrors the YAML layout. Numeric strategy parameters are strings
// so that decimal values survive parsing losslessly.
type ConfigTmp struct {
	Platform               string        `yaml:"platform"`
	Pair                   string        `yaml:"pair"`
	PollPriceInterval      time.Duration `yaml:"poll_price_interval"`
	MaxStepsStr            string        `yaml:"max_steps,omitempty"`
	BuyIntervalPercentStr  string        `yaml:"buy_interval_percent,omitempty"`
	TargetProfitPercentStr string        `yaml:"target_profit_percent,omitempty"`
	StopLossPercentStr     string        `yaml:"stop_loss_percent,omitempty"`
	InitialAmountStr       string        `yaml:"initial_amount,omitempty"`
	PremiumRatePercentStr  string        `yaml:"premium_rate_percent,omitempty"`
}

// Get loads configuration from the --config YAML file if provided,
// otherwise from CLI flags.
func Get() ([]Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	pairFlag := flag.String("pair", "BTC_USDT", "trade pair, example: BTC_USDT")
	platformFlag := flag.String("platform", "simulate", "exchange platform: binance, bybit, hyperliquid or simulate")
	pollInterval := flag.Duration("pollpriceinterval", 5*time.Minute, "poll market price interval")
	maxSteps := flag.Int("maxsteps", defaultMaxSteps, "max ladder buys per position")
	buyInterval := flag.String("buyinterval", defaultBuyIntervalPercent, "price drop percent between ladder buys")
	targetProfit := flag.String("targetprofit", defaultTargetProfitPercent, "take profit percent above average entry")
	stopLoss := flag.String("stoploss", defaultStopLossPercent, "stop loss percent below average entry")
	initialAmount := flag.String("amount", defaultInitialAmount, "first buy amount in quote currency")
	premiumRate := flag.String("premium", defaultPremiumRatePercent, "percent growth of each next buy amount")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	pair, err := getPairFromString(*pairFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid --pair provided, --pair=%s", *pairFlag)
	}

	rules, err := rulesFromStrings(*maxSteps, *buyInterval, *targetProfit, *stopLoss, *initialAmount, *premiumRate)
	if err != nil {
		return nil, err
	}

	return []Config{
		{
			Platform:          *platformFlag,
			Pair:              pair,
			PollPriceInterval: *pollInterval,
			Rules:             rules,
		},
	}, nil
}

// FromFile loads configuration from a YAML file, bypassing CLI flags.
func FromFile(path string) ([]Config, error) {
	return getYaml(path)
}

func getYaml(path string) ([]Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var configsTmp []ConfigTmp
	if err := yaml.Unmarshal(f, &configsTmp); err != nil {
		return nil, err
	}
	if len(configsTmp) == 0 {
		return nil, fmt.Errorf("no bot configurations found in %s", path)
	}

	configs := make([]Config, 0, len(configsTmp))
	for _, c := range configsTmp {
		pair, err := getPairFromString(c.Pair)
		if err != nil {
			return nil, fmt.Errorf("incorrect 'pair' param in yaml config: %s, error: %w", c.Pair, err)
		}
		if c.Platform == "" {
			return nil, fmt.Errorf("'platform' param is required in yaml config for pair %s", c.Pair)
		}
		if c.PollPriceInterval <= 0 {
			return nil, fmt.Errorf("'poll_price_interval' must be positive in yaml config for pair %s", c.Pair)
		}

		maxSteps := defaultMaxSteps
		if c.MaxStepsStr != "" {
			maxSteps, err = strconv.Atoi(c.MaxStepsStr)
			if err != nil {
				return nil, fmt.Errorf("incorrect 'max_steps' param in yaml config (must be an integer), error: %w", err)
			}
		}

		rules, err := rulesFromStrings(
			maxSteps,
			withDefault(c.BuyIntervalPercentStr, defaultBuyIntervalPercent),
			withDefault(c.TargetProfitPercentStr, defaultTargetProfitPercent),
			withDefault(c.StopLossPercentStr, defaultStopLossPercent),
			withDefault(c.InitialAmountStr, defaultInitialAmount),
			withDefault(c.PremiumRatePercentStr, defaultPremiumRatePercent),
		)
		if err != nil {
			return nil, fmt.Errorf("invalid strategy params in yaml config for pair %s: %w", c.Pair, err)
		}

		configs = append(configs, Config{
			Platform:          c.Platform,
			Pair:              pair,
			PollPriceInterval: c.PollPriceInterval,
			Rules:             rules,
		})
	}

	return configs, nil
}

func rulesFromStrings(maxSteps int, buyInterval, targetProfit, stopLoss, initialAmount, premiumRate string) (domain.Rules, error) {
	buyIntervalDec, err := decimal.NewFromString(buyInterval)
	if err != nil {
		return domain.Rules{}, fmt.Errorf("incorrect 'buy_interval_percent' param (must be a decimal): %w", err)
	}
	targetProfitDec, err := decimal.NewFromString(targetProfit)
	if err != nil {
		return domain.Rules{}, fmt.Errorf("incorrect 'target_profit_percent' param (must be a decimal): %w", err)
	}
	stopLossDec, err := decimal.NewFromString(stopLoss)
	if err != nil {
		return domain.Rules{}, fmt.Errorf("incorrect 'stop_loss_percent' param (must be a decimal): %w", err)
	}
	initialAmountDec, err := decimal.NewFromString(initialAmount)
	if err != nil {
		return domain.Rules{}, fmt.Errorf("incorrect 'initial_amount' param (must be a decimal): %w", err)
	}
	premiumRateDec, err := decimal.NewFromString(premiumRate)
	if err != nil {
		return domain.Rules{}, fmt.Errorf("incorrect 'premium_rate_percent' param (must be a decimal): %w", err)
	}

	return domain.NewRules(maxSteps, buyIntervalDec, targetProfitDec, stopLossDec, initialAmountDec, premiumRateDec)
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func getPairFromString(pairStr string) (domain.Pair, error) {
	pairElements := strings.Split(pairStr, "_")
	if len(pairElements) != 2 || pairElements[0] == "" || pairElements[1] == "" {
		return domain.Pair{}, fmt.Errorf("pair must be in BASE_QUOTE format, got %s", pairStr)
	}
	return domain.Pair{From: pairElements[0], To: pairElements[1]}, nil
}
