package pricer

import (
	"context"
	"fmt"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"rung/internal/domain"
)

// BybitPricer fetches quotes from the Bybit V5 spot ticker endpoint.
type BybitPricer struct {
	client *bybit.Client
}

func NewBybitPricer(client *bybit.Client) *BybitPricer {
	return &BybitPricer{client: client}
}

func (p *BybitPricer) GetQuote(ctx context.Context, pair domain.Pair) (domain.Quote, error) {
	symbol := bybit.SymbolV5(pair.Symbol())

	result, err := p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return domain.Quote{}, errors.Wrapf(err, "failed to fetch ticker from Bybit for %s", pair.String())
	}
	if len(result.Result.Spot.List) == 0 {
		return domain.Quote{}, fmt.Errorf("bybit API returned empty ticker for %s", pair.String())
	}

	item := result.Result.Spot.List[0]
	price, err := decimal.NewFromString(item.LastPrice)
	if err != nil {
		return domain.Quote{}, errors.Wrap(err, "failed to parse last price")
	}

	// Price24HPcnt is a fraction (0.0123 = +1.23%)
	change := decimal.Zero
	if item.Price24HPcnt != "" {
		fraction, err := decimal.NewFromString(item.Price24HPcnt)
		if err != nil {
			return domain.Quote{}, errors.Wrap(err, "failed to parse 24h change")
		}
		change = fraction.Mul(decimal.NewFromInt(100))
	}

	return domain.Quote{Price: price, ChangePercent: change}, nil
}
