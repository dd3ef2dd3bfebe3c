package account

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/user/papertrade/internal/entity"
)

// replayState is account state reconstructed by folding the transaction log.
type replayState struct {
	balance        decimal.Decimal
	initialDeposit decimal.Decimal
	holdings       entity.Holdings
}

// replay folds all transactions recorded at or before cutoff, in log order.
// The cutoff boundary is inclusive; entries sharing a timestamp keep their
// append order, the log is never re-sorted.
func replay(transactions []entity.Transaction, cutoff time.Time) replayState {
	st := replayState{
		balance:        decimal.Zero,
		initialDeposit: decimal.Zero,
		holdings:       entity.Holdings{},
	}

	seenDeposit := false
	for _, tx := range transactions {
		if tx.When().After(cutoff) {
			continue
		}

		switch tx.Kind() {
		case entity.TxDeposit:
			st.balance = st.balance.Add(tx.Amount())
			// the first deposit seen is the account's initial deposit
			if !seenDeposit {
				st.initialDeposit = tx.Amount()
				seenDeposit = true
			}
		case entity.TxWithdraw:
			st.balance = st.balance.Sub(tx.Amount())
		case entity.TxBuy:
			trade := tx.(entity.TradeTx)
			st.balance = st.balance.Sub(trade.Amount())
			st.holdings[trade.Symbol()] += trade.Quantity()
		case entity.TxSell:
			trade := tx.(entity.TradeTx)
			st.balance = st.balance.Add(trade.Amount())
			st.holdings[trade.Symbol()] -= trade.Quantity()
			if st.holdings[trade.Symbol()] == 0 {
				delete(st.holdings, trade.Symbol())
			}
		}
	}
	return st
}

// ProfitOrLossAt reconstructs balance and holdings from transactions recorded
// at or before t, values the reconstructed holdings, and subtracts the
// initial deposit seen during the replay.
//
// Holdings are valued at current prices, not prices at t: the result marks
// the historical position to the present market. A query before the account
// existed reconstructs an empty state and returns zero.
func (a *Account) ProfitOrLossAt(ctx context.Context, t time.Time) (decimal.Decimal, error) {
	st := replay(a.transactions, t)

	total := st.balance
	for symbol, quantity := range st.holdings {
		price, err := a.pricer.GetPrice(ctx, symbol)
		if err != nil {
			return decimal.Decimal{}, errors.Wrapf(err, "value holding %s", symbol)
		}
		total = total.Add(price.Mul(decimal.NewFromInt(quantity)))
	}
	return total.Sub(st.initialDeposit), nil
}
