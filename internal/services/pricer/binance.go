package pricer

import (
	"context"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/user/papertrade/internal/entity"
)

// Binance fetches current prices from the Binance public API without
// requiring authentication. Symbols must be Binance tickers (e.g. BTCUSDT).
type Binance struct {
	client *binance.Client
}

// NewBinance creates a Binance-backed pricer.
func NewBinance(client *binance.Client) *Binance {
	return &Binance{client: client}
}

// GetPrice fetches the last traded price for symbol. Transient API failures
// are retried with backoff.
func (p *Binance) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	prices, err := fetchWithRetry(ctx, feedRetry, func(ctx context.Context) ([]*binance.SymbolPrice, error) {
		return p.client.NewListPricesService().Symbol(symbol).Do(ctx)
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(prices) == 0 {
		return decimal.Decimal{}, errors.Wrapf(entity.ErrPriceNotFound, "binance returned no price for %q", symbol)
	}

	return decimal.NewFromString(prices[0].Price)
}
