// Package interfaces defines service contracts for Papertrade
package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/papertrade/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	Users() UserStore
	Ledger() LedgerStore

	// Lifecycle
	Close() error
}

// UserStore manages trading accounts.
type UserStore interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	DeleteUser(ctx context.Context, username string) error
	ListUsers(ctx context.Context) ([]string, error)
}

// LedgerStore is the append-only record of buy/sell events per user per
// stock — the source of truth for share counts.
type LedgerStore interface {
	// Settle inserts the ledger entry and writes the user's new cash balance
	// as one transaction: if either write fails, neither takes effect.
	// Validation is the caller's responsibility.
	Settle(ctx context.Context, username string, entry *models.LedgerEntry, newCash decimal.Decimal) error

	// NetShares returns the signed sum of shares for (username, symbol),
	// 0 when no entries exist.
	NetShares(ctx context.Context, username, symbol string) (int64, error)

	// AllHoldings returns the net position per symbol over every symbol the
	// user has ever traded. Zero-net rows are included; display filtering is
	// the valuator's policy.
	AllHoldings(ctx context.Context, username string) ([]models.Holding, error)

	// History returns all ledger entries for the user ordered by timestamp
	// ascending.
	History(ctx context.Context, username string) ([]*models.LedgerEntry, error)
}
