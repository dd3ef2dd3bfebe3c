package pricer

import (
	"context"

	"github.com/shopspring/decimal"
)

// Pricer resolves the current price of a stock symbol. Implementations may
// hit live feeds; every lookup is treated as potentially failing.
type Pricer interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}
