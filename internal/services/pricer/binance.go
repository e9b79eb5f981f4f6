package pricer

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"rung/internal/domain"
)

// BinancePricer fetches quotes from the Binance 24h ticker endpoint.
type BinancePricer struct {
	client *binance.Client
}

func NewBinancePricer(client *binance.Client) *BinancePricer {
	return &BinancePricer{client: client}
}

func (p *BinancePricer) GetQuote(ctx context.Context, pair domain.Pair) (domain.Quote, error) {
	stats, err := p.client.NewListPriceChangeStatsService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return domain.Quote{}, errors.Wrapf(err, "failed to fetch ticker from Binance for %s", pair.String())
	}
	if len(stats) == 0 {
		return domain.Quote{}, fmt.Errorf("binance API returned empty ticker for %s", pair.String())
	}

	price, err := decimal.NewFromString(stats[0].LastPrice)
	if err != nil {
		return domain.Quote{}, errors.Wrap(err, "failed to parse last price")
	}
	change, err := decimal.NewFromString(stats[0].PriceChangePercent)
	if err != nil {
		return domain.Quote{}, errors.Wrap(err, "failed to parse price change percent")
	}

	return domain.Quote{Price: price, ChangePercent: change}, nil
}
