package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one immutable signed-quantity trade record. Shares is
// positive for a buy and negative for a sell; Price is the per-share
// execution price at settlement time. Entries are append-only — the net
// holding for a (user, symbol) pair is the sum of signed quantities.
type LedgerEntry struct {
	Username  string          `json:"username"`
	Symbol    string          `json:"symbol"`
	Shares    int64           `json:"shares"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// Holding is the derived net position for one symbol. It is never stored;
// stores recompute it from the ledger on demand. NetShares may be zero for
// symbols the user has fully exited.
type Holding struct {
	Symbol    string `json:"symbol"`
	NetShares int64  `json:"net_shares"`
}
