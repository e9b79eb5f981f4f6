package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGetYaml(t *testing.T) {
	path := writeConfig(t, `
- platform: binance
  pair: BTC_USDT
  poll_price_interval: 1m
  max_steps: "5"
  buy_interval_percent: "2.5"
  target_profit_percent: "3"
  stop_loss_percent: "10"
  initial_amount: "10000"
  premium_rate_percent: "10"
- platform: simulate
  pair: ETH_USDT
  poll_price_interval: 30s
`)

	configs, err := getYaml(path)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	first := configs[0]
	require.Equal(t, "binance", first.Platform)
	require.Equal(t, "BTC", first.Pair.From)
	require.Equal(t, "USDT", first.Pair.To)
	require.Equal(t, time.Minute, first.PollPriceInterval)
	require.Equal(t, 5, first.Rules.MaxSteps)
	require.True(t, first.Rules.BuyIntervalPercent.Equal(decimal.RequireFromString("2.5")))
	require.True(t, first.Rules.InitialAmount.Equal(decimal.NewFromInt(10000)))

	second := configs[1]
	require.Equal(t, "simulate", second.Platform)
	require.Equal(t, defaultMaxSteps, second.Rules.MaxSteps)
	require.True(t, second.Rules.TargetProfitPercent.Equal(decimal.RequireFromString(defaultTargetProfitPercent)))
}

func TestGetYamlRejectsBadPair(t *testing.T) {
	path := writeConfig(t, `
- platform: binance
  pair: BTCUSDT
  poll_price_interval: 1m
`)

	_, err := getYaml(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "pair")
}

func TestGetYamlRejectsMissingPlatform(t *testing.T) {
	path := writeConfig(t, `
- pair: BTC_USDT
  poll_price_interval: 1m
`)

	_, err := getYaml(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "platform")
}

func TestGetYamlRejectsInvalidRules(t *testing.T) {
	path := writeConfig(t, `
- platform: binance
  pair: BTC_USDT
  poll_price_interval: 1m
  stop_loss_percent: "-5"
`)

	_, err := getYaml(path)
	require.Error(t, err)
}

func TestGetYamlEmptyFile(t *testing.T) {
	path := writeConfig(t, "")

	_, err := getYaml(path)
	require.Error(t, err)
}
