package server

import (
	"errors"
	"net/http"

	"github.com/bobmcallan/papertrade/internal/services/portfolio"
	"github.com/bobmcallan/papertrade/internal/services/quote"
)

// handlePortfolio handles GET /api/portfolio — the valued snapshot of the
// authenticated user's holdings plus cash.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	username := s.requireUser(w, r)
	if username == "" {
		return
	}

	view, err := s.app.PortfolioService.GetView(r.Context(), username)
	if err != nil {
		s.writePortfolioError(w, username, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   view,
	})
}

// handlePortfolioHistory handles GET /api/portfolio/history — all ledger
// entries for the authenticated user, oldest first.
func (s *Server) handlePortfolioHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	username := s.requireUser(w, r)
	if username == "" {
		return
	}

	entries, err := s.app.PortfolioService.History(r.Context(), username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("History lookup failed")
		WriteError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   entries,
	})
}

// handlePortfolioChart handles GET /api/portfolio/chart — a PNG bar chart of
// the user's allocation across positions and cash.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	username := s.requireUser(w, r)
	if username == "" {
		return
	}

	view, err := s.app.PortfolioService.GetView(r.Context(), username)
	if err != nil {
		s.writePortfolioError(w, username, err)
		return
	}

	png, err := portfolio.RenderAllocationChart(view)
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("Chart render failed")
		WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) writePortfolioError(w http.ResponseWriter, username string, err error) {
	switch {
	case errors.Is(err, quote.ErrProviderUnavailable):
		WriteErrorWithCode(w, http.StatusBadGateway,
			"quote provider unavailable", "provider_unavailable")
	case errors.Is(err, portfolio.ErrLedgerAnomaly):
		s.logger.Error().Err(err).Str("username", username).Msg("Ledger references unknown symbol")
		WriteError(w, http.StatusInternalServerError, "portfolio valuation failed")
	default:
		s.logger.Error().Err(err).Str("username", username).Msg("Portfolio valuation failed")
		WriteError(w, http.StatusInternalServerError, "portfolio valuation failed")
	}
}
