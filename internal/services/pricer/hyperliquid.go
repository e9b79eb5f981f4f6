package pricer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	hyperliquid "github.com/sonirico/go-hyperliquid"

	"rung/internal/domain"
)

// HyperliquidPricer fetches mid prices from the Hyperliquid public Info API.
// The endpoint carries no 24h statistics, so ChangePercent is always zero.
type HyperliquidPricer struct {
	info *hyperliquid.Info
}

func NewHyperliquidPricer(info *hyperliquid.Info) *HyperliquidPricer {
	return &HyperliquidPricer{info: info}
}

func (p *HyperliquidPricer) GetQuote(ctx context.Context, pair domain.Pair) (domain.Quote, error) {
	if p.info == nil {
		return domain.Quote{}, fmt.Errorf("hyperliquid info client is nil")
	}

	mids, err := p.info.AllMids(ctx)
	if err != nil {
		return domain.Quote{}, err
	}

	// mids are keyed by base coin, e.g. "BTC"
	mid, ok := mids[pair.From]
	if !ok || mid == "" {
		return domain.Quote{}, fmt.Errorf("hyperliquid API returned empty mid price for %s", pair.From)
	}

	price, err := decimal.NewFromString(mid)
	if err != nil {
		return domain.Quote{}, err
	}
	return domain.Quote{Price: price}, nil
}
