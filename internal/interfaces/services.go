package interfaces

import (
	"context"

	"github.com/bobmcallan/papertrade/internal/models"
)

// QuoteService resolves live quotes with bounded retry. Lookup of a symbol
// the provider does not know fails fast; transient provider failures are
// retried a bounded number of times before surfacing as unavailable.
type QuoteService interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// PortfolioService values portfolios and owns the per-user view cache.
type PortfolioService interface {
	// GetView returns the cached view when present, otherwise valuates and
	// caches.
	GetView(ctx context.Context, username string) (*models.PortfolioView, error)

	// Valuate recomputes the view from the ledger and live quotes. It is a
	// pure read: no cash or ledger mutation, no cache write.
	Valuate(ctx context.Context, username string) (*models.PortfolioView, error)

	// InvalidateView drops the cached view for the user. Called by trade
	// settlement and by login/register/logout.
	InvalidateView(username string)

	// History returns the user's ledger entries, oldest first.
	History(ctx context.Context, username string) ([]*models.LedgerEntry, error)
}

// TradeService validates and applies buy and sell settlements.
type TradeService interface {
	Buy(ctx context.Context, username, symbol string, shares int64) error
	Sell(ctx context.Context, username, symbol string, shares int64) error
}
