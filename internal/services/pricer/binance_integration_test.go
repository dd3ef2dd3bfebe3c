//go:build integration

package pricer

import (
	"context"
	"testing"

	binance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBinance_GetPrice_Integration calls the real Binance API.
// To run this test, use: go test -tags=integration -v ./...
func TestBinance_GetPrice_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// public price endpoint, no credentials needed
	pricer := NewBinance(binance.NewClient("", ""))
	ctx := context.Background()

	t.Run("returns price for BTCUSDT", func(t *testing.T) {
		price, err := pricer.GetPrice(ctx, "BTCUSDT")
		require.NoError(t, err)
		require.True(t, price.GreaterThan(decimal.Zero), "Expected price > 0, got %s", price.String())
		t.Logf("Current BTCUSDT price: %s", price.String())
	})

	t.Run("returns error for invalid symbol", func(t *testing.T) {
		price, err := pricer.GetPrice(ctx, "NOSUCHSYMBOL")
		assert.Error(t, err)
		assert.True(t, price.IsZero(), "Expected zero price for invalid symbol, got %s", price.String())
	})
}
