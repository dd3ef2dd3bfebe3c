package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxKind identifies the kind of ledger transaction.
type TxKind int

const (
	// TxDeposit adds cash to the account balance.
	TxDeposit TxKind = iota
	// TxWithdraw removes cash from the account balance.
	TxWithdraw
	// TxBuy exchanges cash for shares.
	TxBuy
	// TxSell exchanges shares for cash.
	TxSell
)

func (k TxKind) String() string {
	switch k {
	case TxDeposit:
		return "DEPOSIT"
	case TxWithdraw:
		return "WITHDRAW"
	case TxBuy:
		return "BUY"
	case TxSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Transaction is an immutable ledger entry describing one completed mutation.
// Cash movements are CashTx values, trades are TradeTx values, so every field
// a kind needs is present by construction rather than conditionally set.
type Transaction interface {
	// ID returns the unique identifier assigned when the entry was recorded.
	ID() uuid.UUID
	// When returns the time the entry was recorded.
	When() time.Time
	// Kind returns the transaction kind.
	Kind() TxKind
	// Amount returns the cash moved by the transaction. It is always
	// positive; the direction is implied by Kind.
	Amount() decimal.Decimal
}

type txBase struct {
	id     uuid.UUID
	ts     time.Time
	kind   TxKind
	amount decimal.Decimal
}

func (t txBase) ID() uuid.UUID           { return t.id }
func (t txBase) When() time.Time         { return t.ts }
func (t txBase) Kind() TxKind            { return t.kind }
func (t txBase) Amount() decimal.Decimal { return t.amount }

// CashTx records a deposit or a withdrawal.
type CashTx struct {
	txBase
}

// NewCashTx builds a cash transaction entry.
func NewCashTx(kind TxKind, amount decimal.Decimal, ts time.Time) CashTx {
	return CashTx{txBase{id: uuid.New(), ts: ts, kind: kind, amount: amount}}
}

// TradeTx records a buy or a sell. Amount carries the total cost (buy) or
// proceeds (sell) of the trade.
type TradeTx struct {
	txBase
	symbol   string
	quantity int64
	price    decimal.Decimal
}

// NewTradeTx builds a trade transaction entry.
func NewTradeTx(kind TxKind, symbol string, quantity int64, price, amount decimal.Decimal, ts time.Time) TradeTx {
	return TradeTx{
		txBase:   txBase{id: uuid.New(), ts: ts, kind: kind, amount: amount},
		symbol:   symbol,
		quantity: quantity,
		price:    price,
	}
}

// Symbol returns the traded stock symbol.
func (t TradeTx) Symbol() string { return t.symbol }

// Quantity returns the number of shares traded.
func (t TradeTx) Quantity() int64 { return t.quantity }

// Price returns the per-share price the trade executed at.
func (t TradeTx) Price() decimal.Decimal { return t.price }
