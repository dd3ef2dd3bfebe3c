package pricer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/user/papertrade/internal/entity"
)

// Static serves prices from a fixed in-memory table. It never changes after
// construction, which makes simulation runs reproducible.
type Static struct {
	prices map[string]decimal.Decimal
}

// DefaultPrices returns the built-in demo price table.
func DefaultPrices() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"AAPL":  decimal.NewFromInt(150),
		"TSLA":  decimal.NewFromInt(250),
		"GOOGL": decimal.NewFromInt(120),
	}
}

// NewStatic creates a static pricer from the given table. An empty table
// falls back to DefaultPrices. The table is copied, so later mutation of the
// argument does not affect the pricer.
func NewStatic(prices map[string]decimal.Decimal) *Static {
	if len(prices) == 0 {
		prices = DefaultPrices()
	}
	table := make(map[string]decimal.Decimal, len(prices))
	for symbol, price := range prices {
		table[symbol] = price
	}
	return &Static{prices: table}
}

// GetPrice returns the table price for symbol.
func (p *Static) GetPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	price, ok := p.prices[symbol]
	if !ok {
		return decimal.Decimal{}, errors.Wrapf(entity.ErrPriceNotFound, "symbol %q", symbol)
	}
	return price, nil
}
