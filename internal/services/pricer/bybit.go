package pricer

import (
	"context"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/user/papertrade/internal/entity"
)

// Bybit fetches current spot prices from the Bybit public API.
type Bybit struct {
	client *bybit.Client
}

// NewBybit creates a Bybit-backed pricer.
func NewBybit(client *bybit.Client) *Bybit {
	return &Bybit{client: client}
}

// GetPrice fetches the last traded spot price for symbol. Transient API
// failures are retried with backoff.
func (p *Bybit) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ticker := bybit.SymbolV5(symbol)

	result, err := fetchWithRetry(ctx, feedRetry, func(_ context.Context) (*bybit.V5GetTickersResponse, error) {
		return p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
			Category: "spot",
			Symbol:   &ticker,
		})
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	if len(result.Result.Spot.List) == 0 {
		return decimal.Decimal{}, errors.Wrapf(entity.ErrPriceNotFound, "bybit returned no price for %q", symbol)
	}

	return decimal.NewFromString(result.Result.Spot.List[0].LastPrice)
}
