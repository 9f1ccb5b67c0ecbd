package entity

import (
	"database/sql"
	"time"
)

type WalletTransactionType string

const (
	WalletCredit WalletTransactionType = "credit"
	WalletDebit  WalletTransactionType = "debit"
)

// WalletTransaction is one entry of the append-only per-user ledger.
// BalanceAfter snapshots the user balance right after the transaction; the
// cached balance on User must always equal the latest BalanceAfter.
type WalletTransaction struct {
	TransactionID string                `db:"transaction_id"`
	UserID        string                `db:"user_id"`
	BookingID     sql.NullString        `db:"booking_id"`
	ActorID       sql.NullString        `db:"actor_id"`
	Type          WalletTransactionType `db:"type"`
	Amount        float64               `db:"amount"`
	Currency      string                `db:"currency"`
	BalanceAfter  float64               `db:"balance_after"`
	Reason        string                `db:"reason"`
	Reference     sql.NullString        `db:"reference"`
	CreatedAt     time.Time             `db:"created_at"`
}

// WalletAdjustment describes one credit or debit to apply to a user's wallet.
type WalletAdjustment struct {
	UserID    string
	Amount    float64
	Type      WalletTransactionType
	Reason    string
	BookingID string
	ActorID   string
	Reference string
}

type User struct {
	UserID         string    `db:"user_id"`
	Email          string    `db:"email"`
	WalletBalance  float64   `db:"wallet_balance"`
	WalletCurrency string    `db:"wallet_currency"`
	CreatedAt      time.Time `db:"created_at"`
}
