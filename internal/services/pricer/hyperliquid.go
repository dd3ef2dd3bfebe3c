package pricer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	hyperliquid "github.com/sonirico/go-hyperliquid"
	"github.com/user/papertrade/internal/entity"
)

// Hyperliquid fetches mid prices from the Hyperliquid public Info API.
// Symbols are base coins (e.g. "BTC").
type Hyperliquid struct {
	info *hyperliquid.Info
}

// NewHyperliquid creates a Hyperliquid-backed pricer.
func NewHyperliquid(info *hyperliquid.Info) *Hyperliquid {
	return &Hyperliquid{info: info}
}

// GetPrice fetches the current mid price for symbol. Transient API failures
// are retried with backoff.
func (p *Hyperliquid) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if p.info == nil {
		return decimal.Decimal{}, errors.New("hyperliquid info client is nil")
	}

	mids, err := fetchWithRetry(ctx, feedRetry, func(ctx context.Context) (map[string]string, error) {
		return p.info.AllMids(ctx)
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	mid, ok := mids[symbol]
	if !ok || mid == "" {
		return decimal.Decimal{}, errors.Wrapf(entity.ErrPriceNotFound, "hyperliquid returned no mid price for %q", symbol)
	}

	return decimal.NewFromString(mid)
}
