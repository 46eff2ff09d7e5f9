package interfaces

import (
	"context"
	"errors"

	"github.com/bobmcallan/papertrade/internal/models"
)

// ErrSymbolNotFound is returned (wrapped) by QuoteClient implementations when
// the provider reports that the requested symbol does not exist, as opposed
// to a transport or provider failure.
var ErrSymbolNotFound = errors.New("symbol not found")

// QuoteClient is the raw quote-provider transport. Implementations return
// the provider's error untranslated; retry and error classification live in
// the quote service.
type QuoteClient interface {
	GetRealTimeQuote(ctx context.Context, symbol string) (*models.Quote, error)
}
