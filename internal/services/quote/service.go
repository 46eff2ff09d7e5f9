// Package quote provides the quote-provider facade with bounded retry.
package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/interfaces"
	"github.com/bobmcallan/papertrade/internal/models"
)

// Sentinel errors for quote resolution. ErrUnknownSymbol means the provider
// definitively does not know the symbol; ErrProviderUnavailable means the
// bounded retries were exhausted without an answer either way.
var (
	ErrUnknownSymbol       = errors.New("unknown symbol")
	ErrProviderUnavailable = errors.New("quote provider unavailable")
)

const (
	// DefaultMaxAttempts bounds transient-failure retries. A lookup never
	// loops indefinitely: after this many attempts the caller gets
	// ErrProviderUnavailable.
	DefaultMaxAttempts = 3

	// DefaultBackoff is the initial delay between attempts; it doubles each
	// retry.
	DefaultBackoff = 500 * time.Millisecond
)

// Service implements QuoteService over a QuoteClient.
type Service struct {
	client      interfaces.QuoteClient
	logger      *common.Logger
	maxAttempts int
	backoff     time.Duration
	sleep       func(ctx context.Context, d time.Duration) error // injectable for testing
}

// NewService creates a new quote service.
func NewService(client interfaces.QuoteClient, logger *common.Logger) *Service {
	return &Service{
		client:      client,
		logger:      logger,
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GetQuote resolves a live quote for the symbol. Symbol-not-found fails fast
// with ErrUnknownSymbol; transient provider failures are retried with
// exponential backoff up to the attempt bound, then surfaced as
// ErrProviderUnavailable wrapping the last error.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var lastErr error
	delay := s.backoff

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		quote, err := s.client.GetRealTimeQuote(ctx, symbol)
		if err == nil {
			return quote, nil
		}
		if errors.Is(err, interfaces.ErrSymbolNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		s.logger.Warn().
			Err(err).
			Str("symbol", symbol).
			Int("attempt", attempt).
			Msg("Quote lookup failed")

		if attempt < s.maxAttempts {
			if err := s.sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay *= 2
		}
	}

	return nil, fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, symbol, lastErr)
}
