package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a trading account stored in papertrade-server.
// Cash is the uninvested balance; it is only mutated by trade settlement.
type User struct {
	Username     string          `json:"username"`
	Email        string          `json:"email,omitempty"`
	PasswordHash string          `json:"password_hash,omitempty"`
	Role         string          `json:"role,omitempty"`
	Cash         decimal.Decimal `json:"cash"`
	CreatedAt    time.Time       `json:"created_at"`
}
