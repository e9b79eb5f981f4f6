package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testRules(t *testing.T) Rules {
	t.Helper()
	rules, err := NewRules(3,
		decimal.NewFromInt(5),
		decimal.NewFromInt(5),
		decimal.NewFromInt(10),
		decimal.NewFromInt(10000),
		decimal.Zero)
	require.NoError(t, err)
	return rules
}

func TestNewRulesValidation(t *testing.T) {
	cases := []struct {
		name     string
		maxSteps int
		interval string
		profit   string
		stop     string
		amount   string
		premium  string
		wantErr  bool
	}{
		{"valid", 3, "5", "5", "10", "10000", "0", false},
		{"zero steps", 0, "5", "5", "10", "10000", "0", true},
		{"zero interval", 3, "0", "5", "10", "10000", "0", true},
		{"negative profit", 3, "5", "-1", "10", "10000", "0", true},
		{"zero stop", 3, "5", "5", "0", "10000", "0", true},
		{"zero amount", 3, "5", "5", "10", "0", "0", true},
		{"negative premium", 3, "5", "5", "10", "10000", "-1", true},
		{"zero premium ok", 3, "5", "5", "10", "10000", "0", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRules(tc.maxSteps,
				decimal.RequireFromString(tc.interval),
				decimal.RequireFromString(tc.profit),
				decimal.RequireFromString(tc.stop),
				decimal.RequireFromString(tc.amount),
				decimal.RequireFromString(tc.premium))
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSizeForStepGrowth(t *testing.T) {
	rules, err := NewRules(5,
		decimal.NewFromInt(2),
		decimal.NewFromInt(3),
		decimal.NewFromInt(10),
		decimal.NewFromInt(10000),
		decimal.NewFromInt(10))
	require.NoError(t, err)

	require.True(t, rules.SizeForStep(1).Equal(decimal.NewFromInt(10000)),
		"step 1 must spend the initial amount unscaled")
	require.True(t, rules.SizeForStep(2).Equal(decimal.NewFromInt(11000)))
	require.True(t, rules.SizeForStep(3).Equal(decimal.NewFromInt(12100)),
		"step 3 must be 10000*1.1^2, got %s", rules.SizeForStep(3))

	// monotone non-decreasing
	prev := decimal.Zero
	for step := 1; step <= 5; step++ {
		size := rules.SizeForStep(step)
		require.True(t, size.GreaterThanOrEqual(prev), "size must not shrink at step %d", step)
		prev = size
	}
}

func TestMaxCapital(t *testing.T) {
	rules := testRules(t)
	require.True(t, rules.MaxCapital().Equal(decimal.NewFromInt(30000)))
}

func TestApplyBuyAveraging(t *testing.T) {
	rules, err := NewRules(10,
		decimal.NewFromInt(2),
		decimal.NewFromInt(3),
		decimal.NewFromInt(10),
		decimal.NewFromInt(1000),
		decimal.Zero)
	require.NoError(t, err)

	pos := NewPosition()

	fills := []struct {
		price  string
		amount string
	}{
		{"100", "1000"},
		{"95", "1500"},
		{"80", "500"},
		{"120", "2500"},
	}

	totalInvested := decimal.Zero
	totalQuantity := decimal.Zero
	for _, f := range fills {
		price := decimal.RequireFromString(f.price)
		amount := decimal.RequireFromString(f.amount)
		require.NoError(t, pos.ApplyBuy(rules, price, amount))

		totalInvested = totalInvested.Add(amount)
		totalQuantity = totalQuantity.Add(amount.Div(price))
	}

	wantAvg := totalInvested.Div(totalQuantity)
	diff := pos.AvgEntryPrice.Sub(wantAvg).Abs()
	require.True(t, diff.LessThan(decimal.New(1, -12)),
		"average must equal invested/quantity, want %s got %s", wantAvg, pos.AvgEntryPrice)
	require.True(t, pos.TotalInvested.Equal(totalInvested))
	require.Equal(t, len(fills), pos.Step)
}

func TestApplyBuyStepCap(t *testing.T) {
	rules := testRules(t)
	pos := NewPosition()

	for i := 0; i < rules.MaxSteps; i++ {
		require.NoError(t, pos.ApplyBuy(rules, decimal.NewFromInt(100), decimal.NewFromInt(1000)))
	}
	require.Equal(t, rules.MaxSteps, pos.Step)

	before := pos
	err := pos.ApplyBuy(rules, decimal.NewFromInt(90), decimal.NewFromInt(1000))
	require.Error(t, err, "ladder beyond max steps must be rejected")
	require.Equal(t, before, pos, "rejected fill must not mutate the position")
}

func TestStepMonotonicityAndReset(t *testing.T) {
	rules := testRules(t)
	pos := NewPosition()

	prevStep := 0
	for i := 0; i < rules.MaxSteps; i++ {
		require.NoError(t, pos.ApplyBuy(rules, decimal.NewFromInt(100-int64(i)), decimal.NewFromInt(1000)))
		require.Greater(t, pos.Step, prevStep)
		require.LessOrEqual(t, pos.Step, rules.MaxSteps)
		prevStep = pos.Step
	}

	pos.Reset()
	require.False(t, pos.Active)
	require.Equal(t, 0, pos.Step)
	require.True(t, pos.AvgEntryPrice.IsZero())
	require.True(t, pos.TotalQuantity.IsZero())
	require.True(t, pos.TotalInvested.IsZero())
}

func TestNextBuyThresholdCompounds(t *testing.T) {
	rules, err := NewRules(10,
		decimal.NewFromInt(2),
		decimal.NewFromInt(3),
		decimal.NewFromInt(10),
		decimal.NewFromInt(1000),
		decimal.Zero)
	require.NoError(t, err)

	pos := NewPosition()
	require.NoError(t, pos.ApplyBuy(rules, decimal.NewFromInt(100), decimal.NewFromInt(1000)))

	want := []string{"98", "96.04", "94.1192"}
	for _, w := range want {
		threshold := pos.NextBuyThreshold(rules)
		require.True(t, threshold.Equal(decimal.RequireFromString(w)),
			"threshold must compound multiplicatively, want %s got %s", w, threshold)
		require.NoError(t, pos.ApplyBuy(rules, threshold, decimal.NewFromInt(1000)))
	}
}

func TestEvaluateExitProfitPriority(t *testing.T) {
	rules, err := NewRules(3,
		decimal.NewFromInt(5),
		decimal.NewFromInt(3),
		decimal.NewFromInt(10),
		decimal.NewFromInt(10000),
		decimal.Zero)
	require.NoError(t, err)

	pos := NewPosition()
	require.NoError(t, pos.ApplyBuy(rules, decimal.NewFromInt(100), decimal.NewFromInt(10000)))

	// a wild tick far above both bounds resolves to profit, never loss
	require.Equal(t, ExitProfit, pos.EvaluateExit(rules, decimal.NewFromInt(200)))

	// exactly on the profit boundary still wins
	require.Equal(t, ExitProfit, pos.EvaluateExit(rules, decimal.NewFromInt(103)))

	// exactly on the stop boundary
	require.Equal(t, ExitLoss, pos.EvaluateExit(rules, decimal.NewFromInt(90)))

	// inside the band
	require.Equal(t, ExitNone, pos.EvaluateExit(rules, decimal.NewFromInt(100)))
	require.Equal(t, ExitNone, pos.EvaluateExit(rules, decimal.RequireFromString("102.9")))
	require.Equal(t, ExitNone, pos.EvaluateExit(rules, decimal.RequireFromString("90.1")))
}

func TestPnLPercentZeroAverage(t *testing.T) {
	require.True(t, PnLPercent(decimal.Zero, decimal.NewFromInt(100)).IsZero(),
		"pnl with no position must be zero, not a division by zero")
	require.True(t, PnLPercent(decimal.NewFromInt(100), decimal.NewFromInt(110)).Equal(decimal.NewFromInt(10)))
}

func TestCanScaleIn(t *testing.T) {
	rules := testRules(t)
	pos := NewPosition()

	require.False(t, pos.CanScaleIn(rules, decimal.NewFromInt(1)), "inactive position never scales in")

	require.NoError(t, pos.ApplyBuy(rules, decimal.NewFromInt(100), decimal.NewFromInt(10000)))
	require.False(t, pos.CanScaleIn(rules, decimal.RequireFromString("95.01")))
	require.True(t, pos.CanScaleIn(rules, decimal.NewFromInt(95)))
	require.True(t, pos.CanScaleIn(rules, decimal.NewFromInt(80)))

	require.NoError(t, pos.ApplyBuy(rules, decimal.NewFromInt(95), decimal.NewFromInt(10000)))
	require.NoError(t, pos.ApplyBuy(rules, decimal.RequireFromString("90.25"), decimal.NewFromInt(10000)))
	require.False(t, pos.CanScaleIn(rules, decimal.NewFromInt(1)), "full ladder never scales in")
}
