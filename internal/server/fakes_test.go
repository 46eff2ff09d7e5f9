package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/papertrade/internal/app"
	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/interfaces"
	"github.com/bobmcallan/papertrade/internal/models"
	"github.com/bobmcallan/papertrade/internal/services/portfolio"
	"github.com/bobmcallan/papertrade/internal/services/quote"
	"github.com/bobmcallan/papertrade/internal/services/trade"
)

// --- in-memory storage fakes ---

type fakeUserStore struct {
	users map[string]*models.User
}

func (f *fakeUserStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, fmt.Errorf("user '%s' not found", username)
	}
	return user, nil
}

func (f *fakeUserStore) SaveUser(ctx context.Context, user *models.User) error {
	f.users[user.Username] = user
	return nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, username, hash string) error {
	user, ok := f.users[username]
	if !ok {
		return fmt.Errorf("user '%s' not found", username)
	}
	user.PasswordHash = hash
	return nil
}

func (f *fakeUserStore) DeleteUser(ctx context.Context, username string) error {
	delete(f.users, username)
	return nil
}

func (f *fakeUserStore) ListUsers(ctx context.Context) ([]string, error) {
	var names []string
	for name := range f.users {
		names = append(names, name)
	}
	return names, nil
}

type fakeLedgerStore struct {
	users   *fakeUserStore
	entries []*models.LedgerEntry
}

func (f *fakeLedgerStore) Settle(ctx context.Context, username string, entry *models.LedgerEntry, newCash decimal.Decimal) error {
	user, ok := f.users.users[username]
	if !ok {
		return fmt.Errorf("user '%s' not found", username)
	}
	f.entries = append(f.entries, entry)
	user.Cash = newCash
	return nil
}

func (f *fakeLedgerStore) NetShares(ctx context.Context, username, symbol string) (int64, error) {
	var net int64
	for _, e := range f.entries {
		if e.Username == username && e.Symbol == symbol {
			net += e.Shares
		}
	}
	return net, nil
}

func (f *fakeLedgerStore) AllHoldings(ctx context.Context, username string) ([]models.Holding, error) {
	net := map[string]int64{}
	var order []string
	for _, e := range f.entries {
		if e.Username != username {
			continue
		}
		if _, seen := net[e.Symbol]; !seen {
			order = append(order, e.Symbol)
		}
		net[e.Symbol] += e.Shares
	}
	var holdings []models.Holding
	for _, symbol := range order {
		holdings = append(holdings, models.Holding{Symbol: symbol, NetShares: net[symbol]})
	}
	return holdings, nil
}

func (f *fakeLedgerStore) History(ctx context.Context, username string) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	for _, e := range f.entries {
		if e.Username == username {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

type fakeStorage struct {
	users  *fakeUserStore
	ledger *fakeLedgerStore
}

func (f *fakeStorage) Users() interfaces.UserStore    { return f.users }
func (f *fakeStorage) Ledger() interfaces.LedgerStore { return f.ledger }
func (f *fakeStorage) Close() error                   { return nil }

func newFakeStorage() *fakeStorage {
	users := &fakeUserStore{users: map[string]*models.User{}}
	return &fakeStorage{
		users:  users,
		ledger: &fakeLedgerStore{users: users},
	}
}

// fakeQuoteClient serves fixed prices keyed by symbol. Setting failAfter > 0
// makes every lookup past that count return failErr, so tests can let a
// trade settle and then break the follow-up valuation.
type fakeQuoteClient struct {
	prices    map[string]string
	err       error
	calls     int
	failAfter int
	failErr   error
}

func (f *fakeQuoteClient) GetRealTimeQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.failAfter > 0 && f.calls > f.failAfter {
		return nil, f.failErr
	}
	price, ok := f.prices[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrSymbolNotFound, symbol)
	}
	return &models.Quote{
		Symbol:    symbol,
		Price:     decimal.RequireFromString(price),
		Timestamp: time.Now(),
	}, nil
}

// --- test server setup ---

type testEnv struct {
	server  *Server
	app     *app.App
	storage *fakeStorage
	client  *fakeQuoteClient
}

// newTestEnv builds a server over in-memory fakes and real services.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Auth.JWTSecret = "test-secret"
	logger := common.NewSilentLogger()

	storage := newFakeStorage()
	client := &fakeQuoteClient{prices: map[string]string{}}

	quoteSvc := quote.NewService(client, logger)
	portfolioSvc := portfolio.NewService(storage, quoteSvc, logger)
	tradeSvc := trade.NewService(storage, quoteSvc, portfolioSvc, logger)

	a := &app.App{
		Config:           config,
		Logger:           logger,
		Storage:          storage,
		QuoteClient:      client,
		QuoteService:     quoteSvc,
		PortfolioService: portfolioSvc,
		TradeService:     tradeSvc,
		StartupTime:      time.Now(),
	}

	return &testEnv{
		server:  NewServer(a),
		app:     a,
		storage: storage,
		client:  client,
	}
}

// request performs an HTTP request against the server handler.
func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its bearer token.
func (e *testEnv) register(t *testing.T, username, password string) string {
	t.Helper()

	rec := e.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":     username,
		"password":     password,
		"confirmation": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("register returned empty token")
	}
	return resp.Data.Token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v (body: %s)", err, rec.Body.String())
	}
	return resp
}
