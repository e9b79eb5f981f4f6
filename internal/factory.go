// Package internal wires platform clients into the services the bot runs on.
package internal

import (
	"context"
	"fmt"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rung/internal/clients"
	"rung/internal/domain"
	"rung/internal/services/marketdata"
	"rung/internal/services/pricer"
	"rung/internal/services/trader"
)

type priceQuoter interface {
	GetQuote(ctx context.Context, pair domain.Pair) (domain.Quote, error)
}

type orderExecutor interface {
	Buy(ctx context.Context, amount decimal.Decimal, clientOrderID string) (domain.Fill, error)
	Sell(ctx context.Context, quantity decimal.Decimal, clientOrderID string) (domain.Fill, error)
}

// ServiceProvider builds platform-specific services. It is the single
// dispatch point for exchange implementations.
type ServiceProvider interface {
	Trader(pair domain.Pair) (orderExecutor, error)
	Pricer() (priceQuoter, error)
	KlineProvider() (marketdata.KlineProvider, error)
}

// NewServiceProvider creates a service provider based on the client type.
func NewServiceProvider(client any, logger *zap.Logger) (ServiceProvider, error) {
	switch c := client.(type) {
	case *binance.Client:
		return &binanceProvider{client: c}, nil
	case *bybit.Client:
		return &bybitProvider{client: c}, nil
	case *clients.SimulateClient:
		return &simulateProvider{client: c, logger: logger}, nil
	case *clients.HyperliquidClient:
		return &hyperliquidProvider{client: c}, nil
	default:
		return nil, fmt.Errorf("unsupported client type: %T", client)
	}
}

type binanceProvider struct {
	client *binance.Client
}

func (p *binanceProvider) Trader(pair domain.Pair) (orderExecutor, error) {
	return trader.NewBinanceTrader(p.client, pair), nil
}
func (p *binanceProvider) Pricer() (priceQuoter, error) {
	return pricer.NewBinancePricer(p.client), nil
}
func (p *binanceProvider) KlineProvider() (marketdata.KlineProvider, error) {
	return marketdata.NewBinanceKlineProvider(p.client), nil
}

type bybitProvider struct {
	client *bybit.Client
}

func (p *bybitProvider) Trader(pair domain.Pair) (orderExecutor, error) {
	return trader.NewBybitTrader(p.client, pair), nil
}
func (p *bybitProvider) Pricer() (priceQuoter, error) {
	return pricer.NewBybitPricer(p.client), nil
}
func (p *bybitProvider) KlineProvider() (marketdata.KlineProvider, error) {
	return marketdata.NewBybitKlineProvider(p.client), nil
}

type simulateProvider struct {
	client *clients.SimulateClient
	logger *zap.Logger
}

func (p *simulateProvider) Trader(pair domain.Pair) (orderExecutor, error) {
	return trader.NewSimulateTrader(pair, pricer.NewBinancePricer(p.client.BinanceClient()), p.logger)
}
func (p *simulateProvider) Pricer() (priceQuoter, error) {
	return pricer.NewBinancePricer(p.client.BinanceClient()), nil
}
func (p *simulateProvider) KlineProvider() (marketdata.KlineProvider, error) {
	return marketdata.NewBinanceKlineProvider(p.client.BinanceClient()), nil
}

type hyperliquidProvider struct {
	client *clients.HyperliquidClient
}

func (p *hyperliquidProvider) Trader(pair domain.Pair) (orderExecutor, error) {
	return trader.NewHyperliquidTrader(p.client.Exchange(), pair)
}
func (p *hyperliquidProvider) Pricer() (priceQuoter, error) {
	return pricer.NewHyperliquidPricer(p.client.Exchange().Info()), nil
}
func (p *hyperliquidProvider) KlineProvider() (marketdata.KlineProvider, error) {
	return marketdata.NewHyperliquidKlineProvider(p.client.Exchange().Info()), nil
}
