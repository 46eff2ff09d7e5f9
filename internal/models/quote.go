package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a live price for one symbol. Quotes are never persisted — they
// expire immediately and are re-fetched on every use.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}
