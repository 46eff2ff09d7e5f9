package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/papertrade/internal/services/quote"
)

// handleQuote handles GET /api/quote/{symbol} — look up a live price.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if s.requireUser(w, r) == "" {
		return
	}

	symbol := strings.ToUpper(PathParam(r, "/api/quote/", ""))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	q, err := s.app.QuoteService.GetQuote(r.Context(), symbol)
	if err != nil {
		switch {
		case errors.Is(err, quote.ErrUnknownSymbol):
			WriteErrorWithCode(w, http.StatusNotFound,
				"symbol '"+symbol+"' not found", "unknown_symbol")
		case errors.Is(err, quote.ErrProviderUnavailable):
			WriteErrorWithCode(w, http.StatusBadGateway,
				"quote provider unavailable", "provider_unavailable")
		default:
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("Quote lookup failed")
			WriteError(w, http.StatusInternalServerError, "quote lookup failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   q,
	})
}
