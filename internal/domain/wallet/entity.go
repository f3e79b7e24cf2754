package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is a user's balance-and-points account. Balance may go negative.
type Wallet struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	UserID     uuid.UUID       `db:"user_id" json:"user_id"`
	Balance    decimal.Decimal `db:"balance" json:"balance"`
	Points     int64           `db:"points" json:"points"`
	LastUpdate time.Time       `db:"last_update" json:"last_update"`
}

// New returns an opening wallet for userID.
func New(userID uuid.UUID, balance decimal.Decimal, now time.Time) *Wallet {
	return &Wallet{
		ID:         uuid.New(),
		UserID:     userID,
		Balance:    balance,
		Points:     0,
		LastUpdate: now,
	}
}

// touch advances LastUpdate, never moving it backwards.
func (w *Wallet) touch(now time.Time) {
	if now.After(w.LastUpdate) {
		w.LastUpdate = now
	}
}
