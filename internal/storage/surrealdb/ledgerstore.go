package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/models"
)

// LedgerStore persists trade records in the trade table. Records are
// append-only; net positions are recomputed by aggregation, never stored.
type LedgerStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewLedgerStore(db *surrealdb.DB, logger *common.Logger) *LedgerStore {
	return &LedgerStore{
		db:     db,
		logger: logger,
	}
}

type tradeRecord struct {
	Username  string    `json:"username"`
	Symbol    string    `json:"symbol"`
	Shares    int64     `json:"shares"`
	Price     string    `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

func (r *tradeRecord) toModel() (*models.LedgerEntry, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q in ledger for %s/%s: %w", r.Price, r.Username, r.Symbol, err)
	}
	return &models.LedgerEntry{
		Username:  r.Username,
		Symbol:    r.Symbol,
		Shares:    r.Shares,
		Price:     price,
		Timestamp: r.Timestamp,
	}, nil
}

type holdingRow struct {
	Symbol    string `json:"symbol"`
	NetShares int64  `json:"net_shares"`
}

// Settle writes the user's new cash balance and appends the ledger entry as
// a single transaction. A crash between the two writes can never leave cash
// debited without an entry or vice versa.
func (s *LedgerStore) Settle(ctx context.Context, username string, entry *models.LedgerEntry, newCash decimal.Decimal) error {
	sql := `BEGIN TRANSACTION;
UPDATE $rid SET cash = $cash;
CREATE trade CONTENT $entry;
COMMIT TRANSACTION;`
	vars := map[string]any{
		"rid":  surrealmodels.NewRecordID("user", username),
		"cash": newCash.String(),
		"entry": &tradeRecord{
			Username:  entry.Username,
			Symbol:    entry.Symbol,
			Shares:    entry.Shares,
			Price:     entry.Price.String(),
			Timestamp: entry.Timestamp,
		},
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("settlement transaction failed: %w", err)
	}

	s.logger.Debug().
		Str("username", username).
		Str("symbol", entry.Symbol).
		Int64("shares", entry.Shares).
		Str("cash", newCash.String()).
		Msg("Settlement committed")

	return nil
}

// NetShares returns the signed share sum for (username, symbol), 0 when the
// pair has no ledger entries.
func (s *LedgerStore) NetShares(ctx context.Context, username, symbol string) (int64, error) {
	sql := `SELECT symbol, math::sum(shares) AS net_shares FROM trade
WHERE username = $username AND symbol = $symbol GROUP BY symbol`
	vars := map[string]any{
		"username": username,
		"symbol":   symbol,
	}

	results, err := surrealdb.Query[[]holdingRow](ctx, s.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to sum shares: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return (*results)[0].Result[0].NetShares, nil
	}
	return 0, nil
}

// AllHoldings returns the net position per symbol over every symbol the user
// has ever traded, including fully exited ones.
func (s *LedgerStore) AllHoldings(ctx context.Context, username string) ([]models.Holding, error) {
	sql := `SELECT symbol, math::sum(shares) AS net_shares FROM trade
WHERE username = $username GROUP BY symbol ORDER BY symbol`
	vars := map[string]any{"username": username}

	results, err := surrealdb.Query[[]holdingRow](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate holdings: %w", err)
	}

	var holdings []models.Holding
	if results != nil && len(*results) > 0 {
		for _, row := range (*results)[0].Result {
			holdings = append(holdings, models.Holding{
				Symbol:    row.Symbol,
				NetShares: row.NetShares,
			})
		}
	}
	return holdings, nil
}

// History returns all ledger entries for the user, oldest first.
func (s *LedgerStore) History(ctx context.Context, username string) ([]*models.LedgerEntry, error) {
	sql := "SELECT * FROM trade WHERE username = $username ORDER BY timestamp ASC"
	vars := map[string]any{"username": username}

	results, err := surrealdb.Query[[]tradeRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var entries []*models.LedgerEntry
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			entry, err := (*results)[0].Result[i].toModel()
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
