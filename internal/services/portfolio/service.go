// Package portfolio provides portfolio valuation and the per-user view cache.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/interfaces"
	"github.com/bobmcallan/papertrade/internal/models"
	"github.com/bobmcallan/papertrade/internal/services/quote"
)

// ErrLedgerAnomaly is returned when the ledger holds shares of a symbol the
// quote provider says does not exist. That is a data-integrity problem to
// surface, not a condition to retry around.
var ErrLedgerAnomaly = errors.New("ledger references unknown symbol")

// Service implements PortfolioService.
type Service struct {
	storage interfaces.StorageManager
	quotes  interfaces.QuoteService
	cache   *Cache
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new portfolio service.
func NewService(storage interfaces.StorageManager, quotes interfaces.QuoteService, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		quotes:  quotes,
		cache:   NewCache(),
		logger:  logger,
		now:     time.Now,
	}
}

// GetView returns the cached view when one exists, otherwise valuates and
// caches the result.
func (s *Service) GetView(ctx context.Context, username string) (*models.PortfolioView, error) {
	if view, ok := s.cache.Get(username); ok {
		return view, nil
	}

	view, err := s.Valuate(ctx, username)
	if err != nil {
		return nil, err
	}

	s.cache.Put(username, view)
	return view, nil
}

// InvalidateView drops the user's cached view.
func (s *Service) InvalidateView(username string) {
	s.cache.Invalidate(username)
}

// Valuate computes a fresh PortfolioView: net holdings from the ledger,
// one live quote per symbol with a positive position, market values and net
// worth rounded to cents. It reads cash and ledger but mutates neither.
func (s *Service) Valuate(ctx context.Context, username string) (*models.PortfolioView, error) {
	user, err := s.storage.Users().GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", username, err)
	}

	holdings, err := s.storage.Ledger().AllHoldings(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings for %s: %w", username, err)
	}

	view := &models.PortfolioView{
		Username:   username,
		Cash:       user.Cash,
		Positions:  []models.Position{},
		ComputedAt: s.now().UTC(),
	}

	total := user.Cash
	for _, holding := range holdings {
		// Fully exited symbols stay in the ledger but not in the view.
		if holding.NetShares <= 0 {
			continue
		}

		q, err := s.quotes.GetQuote(ctx, holding.Symbol)
		if err != nil {
			if errors.Is(err, quote.ErrUnknownSymbol) {
				return nil, fmt.Errorf("%w: %s held by %s", ErrLedgerAnomaly, holding.Symbol, username)
			}
			return nil, fmt.Errorf("failed to price %s: %w", holding.Symbol, err)
		}

		marketValue := q.Price.Mul(decimal.NewFromInt(holding.NetShares)).Round(2)
		view.Positions = append(view.Positions, models.Position{
			Symbol:      holding.Symbol,
			Shares:      holding.NetShares,
			Price:       q.Price,
			MarketValue: marketValue,
		})
		total = total.Add(marketValue)
	}

	view.NetWorth = total.Round(2)
	return view, nil
}

// History returns the user's ledger entries ordered oldest first.
func (s *Service) History(ctx context.Context, username string) ([]*models.LedgerEntry, error) {
	return s.storage.Ledger().History(ctx, username)
}
