// Package setup provides a terminal wizard that writes a starter YAML config.
package setup

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"rung/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// GeneratedConfigFile is where the wizard saves its output.
const GeneratedConfigFile = "config.gen.yaml"

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		platform        string
		pair            string
		pollIntervalStr string
		maxStepsStr     string
		buyIntervalStr  string
		targetProfitStr string
		stopLossStr     string
		amountStr       string
		premiumStr      string
		confirm         bool
	)

	// defaults
	pollIntervalStr = "5m"
	maxStepsStr = "10"
	buyIntervalStr = "2"
	targetProfitStr = "3"
	stopLossStr = "15"
	amountStr = "100"
	premiumStr = "5"

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("RUNG CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Set up your averaging ladder.\n"))

	fmt.Println(stepStyle.Render("STEP 1: PLATFORM"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Exchange Platform").
				Options(
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("Hyperliquid", "hyperliquid"),
					huh.NewOption("Simulation", "simulate"),
				).
				Value(&platform),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("RUNG CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: ASSET"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trading Pair").
				Description("Must contain underscore (e.g. BTC_USDT)").
				Value(&pair).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("pair cannot be empty")
					}
					if !strings.Contains(s, "_") {
						return fmt.Errorf("invalid format: must be BASE_QUOTE (e.g. BTC_USDT)")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("RUNG CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: TIMING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Poll Price Interval").
				Description("Duration string (e.g. 30s, 1m, 5m)").
				Value(&pollIntervalStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("RUNG CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: LADDER SETTINGS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Max Ladder Buys").
				Description("Total buys per position, including the first (e.g. 10)").
				Value(&maxStepsStr).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Buy Price Drop %").
				Description("Price drop from the last buy that triggers the next one (e.g. 2)").
				Value(&buyIntervalStr).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Take Profit %").
				Description("Profit over average entry that closes the position (e.g. 3)").
				Value(&targetProfitStr).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Stop Loss %").
				Description("Loss under average entry that closes the position (e.g. 15)").
				Value(&stopLossStr).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("First Buy Amount").
				Description("Quote currency spent on the first buy (e.g. 100)").
				Value(&amountStr).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Premium Rate %").
				Description("Growth of each next buy amount, 0 for flat sizing (e.g. 5)").
				Value(&premiumStr).
				Validate(validateNonNegativeDecimal),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("RUNG CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Platform: %s\nPair: %s\nInterval: %s\nMax buys: %s\nBuy drop: %s%%\nTake profit: %s%%\nStop loss: %s%%\nFirst amount: %s\nPremium: %s%%\n",
		platform, pair, pollIntervalStr, maxStepsStr, buyIntervalStr, targetProfitStr, stopLossStr, amountStr, premiumStr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	pollInterval, _ := time.ParseDuration(pollIntervalStr)

	configs := []config.ConfigTmp{
		{
			Platform:               platform,
			Pair:                   pair,
			PollPriceInterval:      pollInterval,
			MaxStepsStr:            maxStepsStr,
			BuyIntervalPercentStr:  buyIntervalStr,
			TargetProfitPercentStr: targetProfitStr,
			StopLossPercentStr:     stopLossStr,
			InitialAmountStr:       amountStr,
			PremiumRatePercentStr:  premiumStr,
		},
	}

	data, err := yaml.Marshal(configs)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	if err := os.WriteFile(GeneratedConfigFile, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\nConfiguration saved to %s\nStarting bot...", GeneratedConfigFile)))
	time.Sleep(1500 * time.Millisecond)
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	if n < 1 {
		return fmt.Errorf("must be >= 1")
	}
	return nil
}

func validatePositiveDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateNonNegativeDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.IsNegative() {
		return fmt.Errorf("must be >= 0")
	}
	return nil
}
