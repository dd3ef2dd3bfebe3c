package pricer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/papertrade/internal/entity"
)

func TestStatic_GetPrice(t *testing.T) {
	p := NewStatic(nil)

	price, err := p.GetPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(150)))
}

func TestStatic_UnknownSymbol(t *testing.T) {
	p := NewStatic(nil)

	_, err := p.GetPrice(context.Background(), "MSFT")
	assert.ErrorIs(t, err, entity.ErrPriceNotFound)
	assert.Contains(t, err.Error(), "MSFT")
}

func TestStatic_CustomTable(t *testing.T) {
	table := map[string]decimal.Decimal{"NVDA": decimal.NewFromInt(900)}
	p := NewStatic(table)

	price, err := p.GetPrice(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(900)))

	// custom tables replace the defaults entirely
	_, err = p.GetPrice(context.Background(), "AAPL")
	assert.ErrorIs(t, err, entity.ErrPriceNotFound)
}

func TestStatic_CopiesTable(t *testing.T) {
	table := map[string]decimal.Decimal{"NVDA": decimal.NewFromInt(900)}
	p := NewStatic(table)

	table["NVDA"] = decimal.NewFromInt(1)

	price, err := p.GetPrice(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(900)))
}
