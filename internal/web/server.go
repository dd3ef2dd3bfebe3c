package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/user/papertrade/internal/entity"
	"github.com/user/papertrade/internal/services/account"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
)

const snapshotPollInterval = 3 * time.Second

type snapshotStore interface {
	Append(snapshot entity.BalanceSnapshot) (uint64, error)
	SnapshotsAfter(index uint64) ([]entity.BalanceSnapshotRecord, error)
	Latest() (entity.BalanceSnapshotRecord, bool)
}

// Server exposes the account over HTTP: a small HTML front end, a JSON API
// and an SSE stream of balance snapshots. It is the layer that serializes
// access to the account, which is itself not safe for concurrent use.
type Server struct {
	addr   string
	logger *zap.Logger
	pricer account.Pricer
	store  snapshotStore

	mu   sync.Mutex
	acct *account.Account
}

// NewServer creates a web server for the given pricer. The account is opened
// through the API; acct may be nil at start.
func NewServer(addr string, pricer account.Pricer, acct *account.Account, store snapshotStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{addr: addr, logger: logger, pricer: pricer, store: store, acct: acct}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/account", s.handleCreate)
	mux.HandleFunc("/api/deposit", s.handleDeposit)
	mux.HandleFunc("/api/withdraw", s.handleWithdraw)
	mux.HandleFunc("/api/buy", s.handleBuy)
	mux.HandleFunc("/api/sell", s.handleSell)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/pnl-at", s.handlePnlAt)
	mux.HandleFunc("/balance/stream", s.handleBalanceStream)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("web UI listening", zap.String("addr", s.addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via
// ACME, plus an HTTP server on port 80 for the HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return errors.New("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		_ = httpsSrv.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("acme challenge server failed", zap.Error(err))
		}
	}()

	s.logger.Info("web UI listening with auto TLS", zap.String("addr", s.addr), zap.Strings("domains", domains))
	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type tradeRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	amount, err := decodeAmount(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	acct, err := account.New(amount, s.pricer, s.logger)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	s.mu.Lock()
	s.acct = acct
	s.appendSnapshot(r.Context(), acct)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, messageResponse{
		Message: fmt.Sprintf("Account created with initial deposit of $%s", amount.StringFixed(2)),
	})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleCashOp(w, r, "deposited", func(acct *account.Account, amount decimal.Decimal) error {
		return acct.Deposit(amount)
	})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleCashOp(w, r, "withdrew", func(acct *account.Account, amount decimal.Decimal) error {
		return acct.Withdraw(amount)
	})
}

func (s *Server) handleCashOp(w http.ResponseWriter, r *http.Request, verb string, op func(*account.Account, decimal.Decimal) error) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	amount, err := decodeAmount(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, err := s.account()
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	if err := op(acct, amount); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	s.appendSnapshot(r.Context(), acct)
	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Successfully %s $%s", verb, amount.StringFixed(2)),
	})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	s.handleTradeOp(w, r, "bought", (*account.Account).BuyShares)
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	s.handleTradeOp(w, r, "sold", (*account.Account).SellShares)
}

func (s *Server) handleTradeOp(w http.ResponseWriter, r *http.Request, verb string, op func(*account.Account, context.Context, string, int64) error) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode request"))
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, errors.New("symbol is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, err := s.account()
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	if err := op(acct, r.Context(), symbol, req.Quantity); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	s.appendSnapshot(r.Context(), acct)
	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Successfully %s %d shares of %s", verb, req.Quantity, symbol),
	})
}

type holdingView struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
	Value    string `json:"value"`
}

type summaryView struct {
	Balance        string        `json:"balance"`
	PortfolioValue string        `json:"portfolio_value"`
	ProfitOrLoss   string        `json:"profit_or_loss"`
	Holdings       []holdingView `json:"holdings"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, err := s.account()
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	summary, err := acct.Summary(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	view := summaryView{
		Balance:        summary.Balance.String(),
		PortfolioValue: summary.PortfolioValue.String(),
		ProfitOrLoss:   summary.ProfitOrLoss.String(),
		Holdings:       make([]holdingView, 0, len(summary.Holdings)),
	}
	for _, line := range summary.Holdings {
		view.Holdings = append(view.Holdings, holdingView{
			Symbol:   line.Symbol,
			Quantity: line.Quantity,
			Price:    line.Price.String(),
			Value:    line.Value.String(),
		})
	}
	writeJSON(w, http.StatusOK, view)
}

type transactionView struct {
	ID       string `json:"id"`
	Time     string `json:"ts"`
	Kind     string `json:"kind"`
	Amount   string `json:"amount"`
	Symbol   string `json:"symbol,omitempty"`
	Quantity int64  `json:"quantity,omitempty"`
	Price    string `json:"price,omitempty"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, err := s.account()
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	transactions := acct.Transactions()
	views := make([]transactionView, 0, len(transactions))
	for _, tx := range transactions {
		view := transactionView{
			ID:     tx.ID().String(),
			Time:   tx.When().Format(time.RFC3339Nano),
			Kind:   tx.Kind().String(),
			Amount: tx.Amount().String(),
		}
		if trade, ok := tx.(entity.TradeTx); ok {
			view.Symbol = trade.Symbol()
			view.Quantity = trade.Quantity()
			view.Price = trade.Price().String()
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handlePnlAt(w http.ResponseWriter, r *http.Request) {
	at, err := time.Parse(time.RFC3339Nano, r.URL.Query().Get("t"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "parse t"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, err := s.account()
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	pnl, err := acct.ProfitOrLossAt(r.Context(), at)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"profit_or_loss": pnl.String()})
}

func (s *Server) handleBalanceStream(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("snapshot store not available"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// comment heartbeat keeps proxies from dropping the connection
	heartbeat := time.NewTicker(20 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(snapshotPollInterval)
	defer pollTicker.Stop()

	lastIndex := parseLastEventID(r.Header.Get("Last-Event-ID"), r.URL.Query().Get("last_event_id"))
	send := func(record entity.BalanceSnapshotRecord) error {
		payload, err := json.Marshal(record.Snapshot)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "id: %d\n", record.Index)
		fmt.Fprintf(w, "event: balance\n")
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		lastIndex = record.Index
		return nil
	}
	sendSnapshots := func() error {
		records, err := s.store.SnapshotsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			if err := send(record); err != nil {
				return err
			}
		}
		return nil
	}

	// a fresh client gets only the current state; a resuming client gets
	// everything it missed since its last event
	var initErr error
	if lastIndex == 0 {
		if latest, ok := s.store.Latest(); ok {
			initErr = send(latest)
		}
	} else {
		initErr = sendSnapshots()
	}
	if initErr != nil {
		http.Error(w, "failed to load snapshots", http.StatusInternalServerError)
		s.logger.Error("balance stream initial load failed", zap.Error(initErr))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendSnapshots(); err != nil {
				s.logger.Error("balance stream poll failed", zap.Error(err))
			}
		}
	}
}

// account returns the current account handle. Callers must hold s.mu.
func (s *Server) account() (*account.Account, error) {
	if s.acct == nil {
		return nil, errors.New("no account exists, create an account first")
	}
	return s.acct, nil
}

// appendSnapshot records post-mutation state for the SSE stream. Valuation
// may fail when a held symbol cannot be priced; the snapshot then carries
// the balance only. Callers must hold s.mu.
func (s *Server) appendSnapshot(ctx context.Context, acct *account.Account) {
	if s.store == nil {
		return
	}

	snapshot := entity.BalanceSnapshot{
		Timestamp: time.Now(),
		Balance:   acct.Balance().String(),
	}
	if value, err := acct.PortfolioValue(ctx); err == nil {
		snapshot.PortfolioValue = value.String()
		snapshot.ProfitOrLoss = value.Sub(acct.InitialDeposit()).String()
	}

	if _, err := s.store.Append(snapshot); err != nil {
		s.logger.Warn("failed to append balance snapshot", zap.Error(err))
	}
}

func decodeAmount(r *http.Request) (decimal.Decimal, error) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "decode request")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "invalid amount %q", req.Amount)
	}
	return amount, nil
}

// statusFor maps ledger failures to HTTP statuses: caller input mistakes are
// 400, unknown symbols are 404.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrPriceNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidAmount),
		errors.Is(err, entity.ErrInvalidQuantity),
		errors.Is(err, entity.ErrInsufficientFunds),
		errors.Is(err, entity.ErrInsufficientShares):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// parseLastEventID extracts an SSE event ID from either the Last-Event-ID
// header or a query parameter. The header is preferred.
func parseLastEventID(headerVal, queryVal string) uint64 {
	idStr := strings.TrimSpace(headerVal)
	if idStr == "" {
		idStr = strings.TrimSpace(queryVal)
	}
	if idStr == "" {
		return 0
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
