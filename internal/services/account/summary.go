package account

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// HoldingLine describes one held symbol valued at the current price.
type HoldingLine struct {
	Symbol   string
	Quantity int64
	Price    decimal.Decimal
	Value    decimal.Decimal
}

// Summary is an at-a-glance view of the account: cash, total portfolio
// value, profit or loss against the initial deposit, and every holding
// valued at the current price.
type Summary struct {
	Balance        decimal.Decimal
	PortfolioValue decimal.Decimal
	ProfitOrLoss   decimal.Decimal
	Holdings       []HoldingLine
}

// Summary builds the account summary. Like PortfolioValue it fails when any
// held symbol cannot be priced. Holding lines are sorted by symbol.
func (a *Account) Summary(ctx context.Context) (Summary, error) {
	lines := make([]HoldingLine, 0, len(a.holdings))
	total := a.balance
	for symbol, quantity := range a.holdings {
		price, err := a.pricer.GetPrice(ctx, symbol)
		if err != nil {
			return Summary{}, errors.Wrapf(err, "value holding %s", symbol)
		}
		value := price.Mul(decimal.NewFromInt(quantity))
		total = total.Add(value)
		lines = append(lines, HoldingLine{
			Symbol:   symbol,
			Quantity: quantity,
			Price:    price,
			Value:    value,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Symbol < lines[j].Symbol })

	return Summary{
		Balance:        a.balance,
		PortfolioValue: total,
		ProfitOrLoss:   total.Sub(a.initialDeposit),
		Holdings:       lines,
	}, nil
}
