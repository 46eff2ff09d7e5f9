// Package trade implements buy/sell settlement against the holdings ledger.
package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/interfaces"
	"github.com/bobmcallan/papertrade/internal/models"
)

// Settlement rejection reasons. All are recoverable at the request boundary;
// a rejected trade leaves cash and ledger untouched.
var (
	ErrInvalidShareCount  = errors.New("share count must be a positive integer")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
)

// Service implements TradeService. Validation happens here against a single
// price snapshot; the cash update and ledger append are applied together by
// the ledger store's transactional Settle.
type Service struct {
	storage   interfaces.StorageManager
	quotes    interfaces.QuoteService
	portfolio interfaces.PortfolioService
	logger    *common.Logger
	now       func() time.Time // injectable clock for testing
}

// NewService creates a new trade settlement service.
func NewService(storage interfaces.StorageManager, quotes interfaces.QuoteService, portfolio interfaces.PortfolioService, logger *common.Logger) *Service {
	return &Service{
		storage:   storage,
		quotes:    quotes,
		portfolio: portfolio,
		logger:    logger,
		now:       time.Now,
	}
}

// Buy purchases shares at the current quoted price. The cost is debited from
// cash and a positive ledger entry appended, atomically. No partial fills:
// the order settles entirely or not at all.
func (s *Service) Buy(ctx context.Context, username, symbol string, shares int64) error {
	if shares <= 0 {
		return ErrInvalidShareCount
	}

	q, err := s.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return err
	}

	user, err := s.storage.Users().GetUser(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", username, err)
	}

	cost := q.Price.Mul(decimal.NewFromInt(shares)).Round(2)
	newCash := user.Cash.Sub(cost)
	if newCash.IsNegative() {
		return fmt.Errorf("%w: cost %s exceeds cash %s", ErrInsufficientFunds, cost, user.Cash)
	}

	entry := &models.LedgerEntry{
		Username:  username,
		Symbol:    q.Symbol,
		Shares:    shares,
		Price:     q.Price,
		Timestamp: s.now().UTC(),
	}

	if err := s.storage.Ledger().Settle(ctx, username, entry, newCash); err != nil {
		return fmt.Errorf("failed to settle buy: %w", err)
	}

	s.portfolio.InvalidateView(username)

	s.logger.Info().
		Str("username", username).
		Str("symbol", q.Symbol).
		Int64("shares", shares).
		Str("price", q.Price.String()).
		Str("cost", cost.String()).
		Msg("Buy settled")

	return nil
}

// Sell disposes of shares at the current quoted price. The proceeds are
// credited to cash and a negative ledger entry appended, atomically. The net
// holding is checked first so it can never go negative.
func (s *Service) Sell(ctx context.Context, username, symbol string, shares int64) error {
	if shares <= 0 {
		return ErrInvalidShareCount
	}

	q, err := s.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return err
	}

	held, err := s.storage.Ledger().NetShares(ctx, username, q.Symbol)
	if err != nil {
		return fmt.Errorf("failed to load holdings for %s: %w", username, err)
	}
	if held < shares {
		return fmt.Errorf("%w: have %d, selling %d", ErrInsufficientShares, held, shares)
	}

	user, err := s.storage.Users().GetUser(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", username, err)
	}

	proceeds := q.Price.Mul(decimal.NewFromInt(shares)).Round(2)
	newCash := user.Cash.Add(proceeds)

	entry := &models.LedgerEntry{
		Username:  username,
		Symbol:    q.Symbol,
		Shares:    -shares,
		Price:     q.Price,
		Timestamp: s.now().UTC(),
	}

	if err := s.storage.Ledger().Settle(ctx, username, entry, newCash); err != nil {
		return fmt.Errorf("failed to settle sell: %w", err)
	}

	s.portfolio.InvalidateView(username)

	s.logger.Info().
		Str("username", username).
		Str("symbol", q.Symbol).
		Int64("shares", shares).
		Str("price", q.Price.String()).
		Str("proceeds", proceeds.String()).
		Msg("Sell settled")

	return nil
}
