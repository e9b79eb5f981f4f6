package backtest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"rung/internal/domain"
)

func mustRules(t *testing.T, maxSteps int, interval, profit, stop, amount, premium string) domain.Rules {
	t.Helper()
	rules, err := domain.NewRules(maxSteps,
		decimal.RequireFromString(interval),
		decimal.RequireFromString(profit),
		decimal.RequireFromString(stop),
		decimal.RequireFromString(amount),
		decimal.RequireFromString(premium))
	require.NoError(t, err)
	return rules
}

// flatBars builds candles where low = high = close = price.
func flatBars(prices ...string) []domain.MarketCandle {
	bars := make([]domain.MarketCandle, len(prices))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		price := decimal.RequireFromString(p)
		bars[i] = domain.MarketCandle{
			OpenTime:  start.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			CloseTime: start.Add(time.Duration(i+1) * time.Hour),
		}
	}
	return bars
}

func bar(open, high, low, close string, i int) domain.MarketCandle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.MarketCandle{
		OpenTime:  start.Add(time.Duration(i) * time.Hour),
		Open:      decimal.RequireFromString(open),
		High:      decimal.RequireFromString(high),
		Low:       decimal.RequireFromString(low),
		Close:     decimal.RequireFromString(close),
		CloseTime: start.Add(time.Duration(i+1) * time.Hour),
	}
}

func TestRunLadderScenario(t *testing.T) {
	rules := mustRules(t, 3, "5", "5", "10", "10000", "0")
	sim, err := NewSimulator(rules)
	require.NoError(t, err)

	res := sim.Run(flatBars("100", "95", "90.25", "100"))

	require.Equal(t, 1, res.TotalTrades)
	require.Equal(t, 1, res.Wins)
	require.Equal(t, 0, res.Losses)

	// replay the fills the simulator must have made: 10000 at 100, at 95
	// and at 90.25, full exit at 100
	invested := decimal.NewFromInt(30000)
	quantity := decimal.NewFromInt(10000).Div(decimal.NewFromInt(100)).
		Add(decimal.NewFromInt(10000).Div(decimal.NewFromInt(95))).
		Add(decimal.NewFromInt(10000).Div(decimal.RequireFromString("90.25")))
	wantProfit := quantity.Mul(decimal.NewFromInt(100)).Sub(invested)
	wantRate := wantProfit.Div(invested).Mul(decimal.NewFromInt(100))

	require.True(t, res.TotalProfit.Equal(wantProfit),
		"profit: want %s got %s", wantProfit, res.TotalProfit)
	require.True(t, res.ProfitRate.Equal(wantRate),
		"profit rate: want %s got %s", wantRate, res.ProfitRate)
}

func TestRunDeterminism(t *testing.T) {
	rules := mustRules(t, 4, "3", "4", "12", "5000", "15")
	sim, err := NewSimulator(rules)
	require.NoError(t, err)

	bars := []domain.MarketCandle{
		bar("100", "102", "96", "97", 0),
		bar("97", "99", "91", "92", 1),
		bar("92", "105", "90", "104", 2),
		bar("104", "104", "80", "82", 3),
		bar("82", "95", "81", "94", 4),
	}

	first := sim.Run(bars)
	second := sim.Run(bars)
	require.Equal(t, first, second, "identical input must yield identical results")
}

func TestRunStopLossBeforeTakeProfitInOneBar(t *testing.T) {
	rules := mustRules(t, 2, "5", "5", "10", "1000", "0")
	sim, err := NewSimulator(rules)
	require.NoError(t, err)

	// second bar spans both the stop (90) and the target (105)
	res := sim.Run([]domain.MarketCandle{
		bar("100", "100", "100", "100", 0),
		bar("100", "110", "85", "108", 1),
	})

	require.Equal(t, 1, res.TotalTrades)
	require.Equal(t, 0, res.Wins)
	require.Equal(t, 1, res.Losses, "a bar spanning both thresholds must resolve to the stop")
	require.True(t, res.TotalProfit.Equal(decimal.NewFromInt(-100)),
		"exit at the stop price 90 banks -100, got %s", res.TotalProfit)
}

func TestRunCascadesMultipleRungsInOneBar(t *testing.T) {
	rules := mustRules(t, 4, "5", "50", "50", "1000", "0")
	sim, err := NewSimulator(rules)
	require.NoError(t, err)

	// one deep bar crosses the 95, 90.25 and 85.7375 thresholds at once;
	// wide exit bounds keep the ladder open
	res := sim.Run([]domain.MarketCandle{
		bar("100", "100", "100", "100", 0),
		bar("100", "100", "85", "86", 1),
	})

	require.Equal(t, 0, res.TotalTrades)

	// invested must cover all four rungs
	// fills: 1000@100, 1000@95, 1000@90.25, 1000@85.7375
	quantity := decimal.NewFromInt(1000).Div(decimal.NewFromInt(100)).
		Add(decimal.NewFromInt(1000).Div(decimal.NewFromInt(95))).
		Add(decimal.NewFromInt(1000).Div(decimal.RequireFromString("90.25"))).
		Add(decimal.NewFromInt(1000).Div(decimal.RequireFromString("85.7375")))

	// the open position is unrealized: equity at the last close reflects it
	wantEquity := quantity.Mul(decimal.NewFromInt(86)).Sub(decimal.NewFromInt(4000))
	require.True(t, wantEquity.LessThan(decimal.Zero), "sanity: ladder is under water")
	require.True(t, res.TotalProfit.IsZero(), "open position must not bank profit")
}

func TestRunGapBarFillsAtTradedPrice(t *testing.T) {
	rules := mustRules(t, 1, "5", "5", "10", "1000", "0")
	sim, err := NewSimulator(rules)
	require.NoError(t, err)

	// gap up: the whole bar trades above the 105 target, so the exit fills
	// at the bar low, not at a price that never printed
	res := sim.Run([]domain.MarketCandle{
		bar("100", "100", "100", "100", 0),
		bar("108", "112", "108", "110", 1),
	})

	require.Equal(t, 1, res.Wins)
	wantProfit := decimal.NewFromInt(1000).Div(decimal.NewFromInt(100)).
		Mul(decimal.NewFromInt(108)).Sub(decimal.NewFromInt(1000))
	require.True(t, res.TotalProfit.Equal(wantProfit),
		"want exit at 108, profit %s, got %s", wantProfit, res.TotalProfit)
}

func TestRunDrawdownBounds(t *testing.T) {
	rules := mustRules(t, 1, "5", "1", "50", "1000", "0")
	sim, err := NewSimulator(rules)
	require.NoError(t, err)

	// monotone rising prices: every ladder exits in profit, equity never dips
	res := sim.Run(flatBars("100", "102", "104", "107", "110", "113"))
	require.True(t, res.MaxDrawdownPercent.IsZero(),
		"monotone non-decreasing equity must have zero drawdown, got %s", res.MaxDrawdownPercent)
	require.Greater(t, res.Wins, 0)

	// a losing stretch after banked gains produces a positive drawdown
	res = sim.Run(flatBars("100", "102", "100", "45", "44"))
	require.True(t, res.MaxDrawdownPercent.GreaterThanOrEqual(decimal.Zero))
	require.Greater(t, res.Losses, 0)
	require.True(t, res.MaxDrawdownPercent.GreaterThan(decimal.Zero),
		"drawdown must be positive after equity falls from a positive peak")
}

func TestRunLowHighDefaultToClose(t *testing.T) {
	rules := mustRules(t, 2, "5", "5", "10", "1000", "0")
	sim, err := NewSimulator(rules)
	require.NoError(t, err)

	// close-only bars (no high/low) behave like flat bars
	closeOnly := []domain.MarketCandle{
		{Close: decimal.NewFromInt(100)},
		{Close: decimal.NewFromInt(95)},
		{Close: decimal.NewFromInt(105)},
	}
	res := sim.Run(closeOnly)

	flat := sim.Run(flatBars("100", "95", "105"))
	require.Equal(t, flat, res)
}

func TestRunOpenPositionNotCounted(t *testing.T) {
	rules := mustRules(t, 3, "5", "5", "10", "1000", "0")
	sim, err := NewSimulator(rules)
	require.NoError(t, err)

	res := sim.Run(flatBars("100", "99", "98"))
	require.Equal(t, 0, res.TotalTrades)
	require.True(t, res.TotalProfit.IsZero())
}
