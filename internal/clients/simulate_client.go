package clients

import (
	"github.com/adshao/go-binance/v2"
)

// SimulateClient serves real market data for paper trading. It uses the
// Binance public API, no keys required.
type SimulateClient struct {
	binanceClient *binance.Client
}

func NewSimulateClient() *SimulateClient {
	return &SimulateClient{binanceClient: binance.NewClient("", "")}
}

// BinanceClient returns the underlying public Binance client.
func (c *SimulateClient) BinanceClient() *binance.Client {
	return c.binanceClient
}
