package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxKindString(t *testing.T) {
	assert.Equal(t, "DEPOSIT", TxDeposit.String())
	assert.Equal(t, "WITHDRAW", TxWithdraw.String())
	assert.Equal(t, "BUY", TxBuy.String())
	assert.Equal(t, "SELL", TxSell.String())
}

func TestNewTradeTx(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tx := NewTradeTx(TxBuy, "AAPL", 2, decimal.NewFromInt(150), decimal.NewFromInt(300), ts)

	assert.NotEqual(t, tx.ID().String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, TxBuy, tx.Kind())
	assert.Equal(t, "AAPL", tx.Symbol())
	assert.Equal(t, int64(2), tx.Quantity())
	assert.True(t, tx.Price().Equal(decimal.NewFromInt(150)))
	assert.True(t, tx.Amount().Equal(decimal.NewFromInt(300)))
	assert.True(t, tx.When().Equal(ts))
}

func TestTransactionIDsAreUnique(t *testing.T) {
	ts := time.Now()
	a := NewCashTx(TxDeposit, decimal.NewFromInt(10), ts)
	b := NewCashTx(TxDeposit, decimal.NewFromInt(10), ts)
	require.NotEqual(t, a.ID(), b.ID())
}

func TestHoldingsClone(t *testing.T) {
	h := Holdings{"AAPL": 2}
	c := h.Clone()
	c["AAPL"] = 99

	assert.Equal(t, int64(2), h["AAPL"])
}
