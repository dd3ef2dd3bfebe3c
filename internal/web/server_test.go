package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/papertrade/internal/entity"
	"github.com/user/papertrade/internal/services/account"
	"github.com/user/papertrade/internal/services/pricer"
	"github.com/user/papertrade/internal/storage/snapshots"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, withAccount bool) *Server {
	t.Helper()
	p := pricer.NewStatic(nil)

	var acct *account.Account
	if withAccount {
		var err error
		acct, err = account.New(decimal.NewFromInt(1000), p, zap.NewNop())
		require.NoError(t, err)
	}
	return NewServer(":0", p, acct, snapshots.NewStore(10), zap.NewNop())
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.mux().ServeHTTP(rec, req)
	return rec
}

func TestHandleCreate(t *testing.T) {
	srv := newTestServer(t, false)

	rec := doJSON(t, srv, http.MethodPost, "/api/account", `{"amount":"1000"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "1000.00")

	rec = doJSON(t, srv, http.MethodGet, "/api/summary", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleCreate_InvalidDeposit(t *testing.T) {
	srv := newTestServer(t, false)

	rec := doJSON(t, srv, http.MethodPost, "/api/account", `{"amount":"0"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/account", `{"amount":"not-a-number"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_NoAccount(t *testing.T) {
	srv := newTestServer(t, false)

	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodPost, "/api/deposit", `{"amount":"100"}`},
		{http.MethodPost, "/api/withdraw", `{"amount":"100"}`},
		{http.MethodPost, "/api/buy", `{"symbol":"AAPL","quantity":1}`},
		{http.MethodPost, "/api/sell", `{"symbol":"AAPL","quantity":1}`},
		{http.MethodGet, "/api/summary", ""},
		{http.MethodGet, "/api/transactions", ""},
		{http.MethodGet, "/api/pnl-at?t=2024-06-01T12:00:00Z", ""},
	} {
		rec := doJSON(t, srv, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusConflict, rec.Code, tc.path)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), tc.path)
		assert.Contains(t, resp.Error, "no account", tc.path)
	}
}

func TestHandleDeposit(t *testing.T) {
	srv := newTestServer(t, true)

	rec := doJSON(t, srv, http.MethodPost, "/api/deposit", `{"amount":"250"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view summaryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "1250", view.Balance)
}

func TestHandleWithdraw_InsufficientFunds(t *testing.T) {
	srv := newTestServer(t, true)

	rec := doJSON(t, srv, http.MethodPost, "/api/withdraw", `{"amount":"5000"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBuy(t *testing.T) {
	srv := newTestServer(t, true)

	rec := doJSON(t, srv, http.MethodPost, "/api/buy", `{"symbol":"AAPL","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view summaryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "700", view.Balance)
	require.Len(t, view.Holdings, 1)
	assert.Equal(t, "AAPL", view.Holdings[0].Symbol)
	assert.Equal(t, int64(2), view.Holdings[0].Quantity)
}

func TestHandleBuy_NormalizesSymbol(t *testing.T) {
	srv := newTestServer(t, true)

	rec := doJSON(t, srv, http.MethodPost, "/api/buy", `{"symbol":"  aapl ","quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "AAPL")
}

func TestHandleBuy_UnknownSymbol(t *testing.T) {
	srv := newTestServer(t, true)

	rec := doJSON(t, srv, http.MethodPost, "/api/buy", `{"symbol":"MSFT","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleBuy_InvalidQuantity(t *testing.T) {
	srv := newTestServer(t, true)

	rec := doJSON(t, srv, http.MethodPost, "/api/buy", `{"symbol":"AAPL","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSell_InsufficientShares(t *testing.T) {
	srv := newTestServer(t, true)

	rec := doJSON(t, srv, http.MethodPost, "/api/sell", `{"symbol":"AAPL","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTransactions(t *testing.T) {
	srv := newTestServer(t, true)
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/api/buy", `{"symbol":"AAPL","quantity":2}`).Code)

	rec := doJSON(t, srv, http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var views []transactionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 2)

	// funding deposit first, then the buy with its trade fields
	assert.Equal(t, "DEPOSIT", views[0].Kind)
	assert.Empty(t, views[0].Symbol)
	assert.Equal(t, "BUY", views[1].Kind)
	assert.Equal(t, "AAPL", views[1].Symbol)
	assert.Equal(t, int64(2), views[1].Quantity)
	assert.Equal(t, "150", views[1].Price)
	assert.Equal(t, "300", views[1].Amount)
}

func TestHandlePnlAt(t *testing.T) {
	srv := newTestServer(t, true)

	rec := doJSON(t, srv, http.MethodGet, "/api/pnl-at?t=2030-01-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "0", resp["profit_or_loss"])
}

func TestHandlePnlAt_BadTimestamp(t *testing.T) {
	srv := newTestServer(t, true)

	rec := doJSON(t, srv, http.MethodGet, "/api/pnl-at?t=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, true)

	rec := doJSON(t, srv, http.MethodGet, "/api/deposit", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	rec = doJSON(t, srv, http.MethodGet, "/api/buy", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMutationsAppendSnapshots(t *testing.T) {
	store := snapshots.NewStore(10)
	p := pricer.NewStatic(nil)
	acct, err := account.New(decimal.NewFromInt(1000), p, zap.NewNop())
	require.NoError(t, err)
	srv := NewServer(":0", p, acct, store, zap.NewNop())

	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/api/deposit", `{"amount":"100"}`).Code)
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/api/buy", `{"symbol":"AAPL","quantity":1}`).Code)

	records, err := store.SnapshotsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1100", records[0].Snapshot.Balance)
	assert.Equal(t, "950", records[1].Snapshot.Balance)
	assert.Equal(t, "1100", records[1].Snapshot.PortfolioValue)
}

// streamEvents opens the balance stream, lets the handler write its initial
// events, then cancels the request and returns everything written.
func streamEvents(t *testing.T, srv *Server, lastEventID string) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/balance/stream", nil).WithContext(ctx)
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}
	rec := httptest.NewRecorder()

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	srv.mux().ServeHTTP(rec, req)
	return rec.Body.String()
}

func newStreamServer(t *testing.T, balances ...string) *Server {
	t.Helper()
	store := snapshots.NewStore(10)
	for _, balance := range balances {
		_, err := store.Append(entity.BalanceSnapshot{Timestamp: time.Now(), Balance: balance})
		require.NoError(t, err)
	}
	return NewServer(":0", pricer.NewStatic(nil), nil, store, zap.NewNop())
}

func TestBalanceStream_FreshClientGetsLatestOnly(t *testing.T) {
	srv := newStreamServer(t, "100", "200", "300")

	body := streamEvents(t, srv, "")
	assert.Contains(t, body, "id: 3\n")
	assert.Contains(t, body, `"balance":"300"`)
	assert.NotContains(t, body, "id: 1\n")
	assert.NotContains(t, body, "id: 2\n")
}

func TestBalanceStream_ResumeGetsMissedSnapshots(t *testing.T) {
	srv := newStreamServer(t, "100", "200", "300")

	body := streamEvents(t, srv, "1")
	assert.NotContains(t, body, "id: 1\n")
	assert.Contains(t, body, "id: 2\n")
	assert.Contains(t, body, "id: 3\n")
	assert.Contains(t, body, `"balance":"200"`)
	assert.Contains(t, body, `"balance":"300"`)
}

func TestBalanceStream_EmptyStoreSendsNothing(t *testing.T) {
	srv := newStreamServer(t)

	body := streamEvents(t, srv, "")
	assert.NotContains(t, body, "id:")
}

func TestParseLastEventID(t *testing.T) {
	assert.Equal(t, uint64(7), parseLastEventID("7", ""))
	assert.Equal(t, uint64(3), parseLastEventID("", "3"))
	// header wins over the query parameter
	assert.Equal(t, uint64(7), parseLastEventID("7", "3"))
	assert.Equal(t, uint64(0), parseLastEventID("", ""))
	assert.Equal(t, uint64(0), parseLastEventID("junk", ""))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(errors.Wrap(entity.ErrPriceNotFound, "MSFT")))
	assert.Equal(t, http.StatusBadRequest, statusFor(entity.ErrInvalidAmount))
	assert.Equal(t, http.StatusBadRequest, statusFor(entity.ErrInvalidQuantity))
	assert.Equal(t, http.StatusBadRequest, statusFor(entity.ErrInsufficientFunds))
	assert.Equal(t, http.StatusBadRequest, statusFor(entity.ErrInsufficientShares))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
