package account

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/user/papertrade/internal/entity"
	"go.uber.org/zap"
)

// Pricer resolves the current market price for a symbol. Lookups may fail;
// the account never mutates state when one does.
type Pricer interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Account is a trading-simulation account: cash balance, share holdings and
// an append-only transaction log. Every mutation validates first, then
// applies its effect and records exactly one transaction, so a failed
// operation leaves the account untouched.
//
// Account is not safe for concurrent use. Callers sharing one account across
// goroutines must serialize access themselves (see web.Server).
type Account struct {
	logger *zap.Logger
	pricer Pricer

	balance        decimal.Decimal
	initialDeposit decimal.Decimal
	holdings       entity.Holdings
	transactions   []entity.Transaction

	now func() time.Time
}

// New opens an account funded with initialDeposit and records the funding
// deposit in the transaction log.
func New(initialDeposit decimal.Decimal, pricer Pricer, logger *zap.Logger) (*Account, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pricer == nil {
		return nil, errors.New("pricer is required")
	}
	if initialDeposit.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Wrapf(entity.ErrInvalidAmount, "initial deposit %s", initialDeposit)
	}

	a := &Account{
		logger:         logger,
		pricer:         pricer,
		balance:        initialDeposit,
		initialDeposit: initialDeposit,
		holdings:       entity.Holdings{},
		now:            time.Now,
	}
	a.transactions = append(a.transactions, entity.NewCashTx(entity.TxDeposit, initialDeposit, a.now()))

	logger.Info("account opened",
		zap.String("initial_deposit", initialDeposit.String()))
	return a, nil
}

// Balance returns the current cash balance.
func (a *Account) Balance() decimal.Decimal { return a.balance }

// InitialDeposit returns the deposit the account was opened with. It is the
// baseline for profit-or-loss queries.
func (a *Account) InitialDeposit() decimal.Decimal { return a.initialDeposit }

// Deposit adds amount to the cash balance.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.Wrapf(entity.ErrInvalidAmount, "deposit %s", amount)
	}

	a.balance = a.balance.Add(amount)
	a.transactions = append(a.transactions, entity.NewCashTx(entity.TxDeposit, amount, a.now()))

	a.logger.Info("deposit recorded",
		zap.String("amount", amount.String()),
		zap.String("balance", a.balance.String()))
	return nil
}

// Withdraw removes amount from the cash balance. The balance never goes
// negative.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.Wrapf(entity.ErrInvalidAmount, "withdrawal %s", amount)
	}
	if amount.GreaterThan(a.balance) {
		return errors.Wrapf(entity.ErrInsufficientFunds, "withdraw %s with balance %s", amount, a.balance)
	}

	a.balance = a.balance.Sub(amount)
	a.transactions = append(a.transactions, entity.NewCashTx(entity.TxWithdraw, amount, a.now()))

	a.logger.Info("withdrawal recorded",
		zap.String("amount", amount.String()),
		zap.String("balance", a.balance.String()))
	return nil
}

// BuyShares buys quantity shares of symbol at the current price. The whole
// cost must be covered by the cash balance; there are no partial buys.
func (a *Account) BuyShares(ctx context.Context, symbol string, quantity int64) error {
	if quantity <= 0 {
		return errors.Wrapf(entity.ErrInvalidQuantity, "buy %d shares", quantity)
	}

	price, err := a.pricer.GetPrice(ctx, symbol)
	if err != nil {
		return errors.Wrapf(err, "get price for %s", symbol)
	}

	cost := price.Mul(decimal.NewFromInt(quantity))
	if cost.GreaterThan(a.balance) {
		return errors.Wrapf(entity.ErrInsufficientFunds, "buy costs %s with balance %s", cost, a.balance)
	}

	a.balance = a.balance.Sub(cost)
	a.holdings[symbol] += quantity
	a.transactions = append(a.transactions, entity.NewTradeTx(entity.TxBuy, symbol, quantity, price, cost, a.now()))

	a.logger.Info("shares bought",
		zap.String("symbol", symbol),
		zap.Int64("quantity", quantity),
		zap.String("price", price.String()),
		zap.String("cost", cost.String()))
	return nil
}

// SellShares sells quantity shares of symbol at the current price. The
// holding entry is deleted when its quantity reaches zero.
func (a *Account) SellShares(ctx context.Context, symbol string, quantity int64) error {
	if quantity <= 0 {
		return errors.Wrapf(entity.ErrInvalidQuantity, "sell %d shares", quantity)
	}
	if a.holdings[symbol] < quantity {
		return errors.Wrapf(entity.ErrInsufficientShares, "sell %d %s shares holding %d", quantity, symbol, a.holdings[symbol])
	}

	price, err := a.pricer.GetPrice(ctx, symbol)
	if err != nil {
		return errors.Wrapf(err, "get price for %s", symbol)
	}

	proceeds := price.Mul(decimal.NewFromInt(quantity))
	a.balance = a.balance.Add(proceeds)
	a.holdings[symbol] -= quantity
	if a.holdings[symbol] == 0 {
		delete(a.holdings, symbol)
	}
	a.transactions = append(a.transactions, entity.NewTradeTx(entity.TxSell, symbol, quantity, price, proceeds, a.now()))

	a.logger.Info("shares sold",
		zap.String("symbol", symbol),
		zap.Int64("quantity", quantity),
		zap.String("price", price.String()),
		zap.String("proceeds", proceeds.String()))
	return nil
}

// PortfolioValue returns the cash balance plus the current market value of
// all holdings. It fails if any held symbol cannot be priced; there is no
// partial or cached valuation.
func (a *Account) PortfolioValue(ctx context.Context) (decimal.Decimal, error) {
	total := a.balance
	for symbol, quantity := range a.holdings {
		price, err := a.pricer.GetPrice(ctx, symbol)
		if err != nil {
			return decimal.Decimal{}, errors.Wrapf(err, "value holding %s", symbol)
		}
		total = total.Add(price.Mul(decimal.NewFromInt(quantity)))
	}
	return total, nil
}

// ProfitOrLoss returns the portfolio value minus the initial deposit.
func (a *Account) ProfitOrLoss(ctx context.Context) (decimal.Decimal, error) {
	value, err := a.PortfolioValue(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return value.Sub(a.initialDeposit), nil
}

// Holdings returns an independent copy of the current holdings.
func (a *Account) Holdings() entity.Holdings {
	return a.holdings.Clone()
}

// Transactions returns an independent copy of the transaction log, in the
// order the entries were recorded.
func (a *Account) Transactions() []entity.Transaction {
	out := make([]entity.Transaction, len(a.transactions))
	copy(out, a.transactions)
	return out
}
