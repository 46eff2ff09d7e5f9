package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is one valued holding inside a PortfolioView.
type Position struct {
	Symbol      string          `json:"symbol"`
	Shares      int64           `json:"shares"`
	Price       decimal.Decimal `json:"price"`
	MarketValue decimal.Decimal `json:"market_value"`
}

// PortfolioView is the valued snapshot of a user's portfolio: every holding
// with a positive net share count priced against a single live quote, plus
// cash and total net worth. Views are internally consistent (one price
// snapshot per symbol per valuation) but not consistent with concurrent
// ledger mutations from other sessions of the same user.
type PortfolioView struct {
	Username   string          `json:"username"`
	Cash       decimal.Decimal `json:"cash"`
	Positions  []Position      `json:"positions"`
	NetWorth   decimal.Decimal `json:"net_worth"`
	ComputedAt time.Time       `json:"computed_at"`
}
