package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/papertrade/internal/services/quote"
	"github.com/bobmcallan/papertrade/internal/services/trade"
)

type tradeRequest struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}

// handleTradeBuy handles POST /api/trade/buy.
func (s *Server) handleTradeBuy(w http.ResponseWriter, r *http.Request) {
	s.handleTrade(w, r, s.app.TradeService.Buy)
}

// handleTradeSell handles POST /api/trade/sell.
func (s *Server) handleTradeSell(w http.ResponseWriter, r *http.Request) {
	s.handleTrade(w, r, s.app.TradeService.Sell)
}

// handleTrade is the shared buy/sell flow: decode, validate, apply the
// settlement, and return the refreshed portfolio view.
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, username, symbol string, shares int64) error) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	username := s.requireUser(w, r)
	if username == "" {
		return
	}

	var req tradeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	ctx := r.Context()
	if err := apply(ctx, username, symbol, req.Shares); err != nil {
		s.writeTradeError(w, username, symbol, err)
		return
	}

	view, err := s.app.PortfolioService.GetView(ctx, username)
	if err != nil {
		// The trade settled; surface the valuation failure without
		// pretending the trade failed.
		s.logger.Error().Err(err).Str("username", username).Msg("Post-trade valuation failed")
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":           "ok",
			"data":             nil,
			"view_unavailable": true,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   view,
	})
}

func (s *Server) writeTradeError(w http.ResponseWriter, username, symbol string, err error) {
	switch {
	case errors.Is(err, trade.ErrInvalidShareCount):
		WriteErrorWithCode(w, http.StatusBadRequest,
			"shares must be a positive whole number", "invalid_share_count")
	case errors.Is(err, quote.ErrUnknownSymbol):
		WriteErrorWithCode(w, http.StatusNotFound,
			"symbol '"+symbol+"' not found", "unknown_symbol")
	case errors.Is(err, trade.ErrInsufficientFunds):
		WriteErrorWithCode(w, http.StatusBadRequest,
			"insufficient cash for this purchase", "insufficient_funds")
	case errors.Is(err, trade.ErrInsufficientShares):
		WriteErrorWithCode(w, http.StatusBadRequest,
			"not enough shares held to sell", "insufficient_shares")
	case errors.Is(err, quote.ErrProviderUnavailable):
		WriteErrorWithCode(w, http.StatusBadGateway,
			"quote provider unavailable", "provider_unavailable")
	default:
		s.logger.Error().Err(err).
			Str("username", username).
			Str("symbol", symbol).
			Msg("Trade failed")
		WriteError(w, http.StatusInternalServerError, "trade failed")
	}
}
