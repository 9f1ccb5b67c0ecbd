package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"travelbook/entity"
)

// WalletPostgresLedger keeps the per-user balance and the append-only
// transaction ledger consistent. Every adjustment runs in a serializable
// transaction spanning the users balance cache and the ledger append, so
// concurrent debits can never drive a balance negative.
type WalletPostgresLedger struct {
	db *sqlx.DB
}

func NewWalletPostgresLedger(db *sqlx.DB) *WalletPostgresLedger {
	if db == nil {
		panic("db is nil")
	}
	return &WalletPostgresLedger{db: db}
}

func (l *WalletPostgresLedger) Adjust(ctx context.Context, adj entity.WalletAdjustment) (entity.WalletTransaction, error) {
	if adj.Amount <= 0 {
		return entity.WalletTransaction{}, entity.ErrInvalidAmount
	}

	var txn entity.WalletTransaction
	err := updateInTx(ctx, l.db, sql.LevelSerializable, func(ctx context.Context, tx *sqlx.Tx) error {
		var user entity.User
		err := tx.GetContext(ctx, &user, `
			SELECT * FROM users WHERE user_id = $1 FOR UPDATE
		`, adj.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return entity.ErrNotFound
			}
			return fmt.Errorf("could not get user: %w", err)
		}

		newBalance := user.WalletBalance
		switch adj.Type {
		case entity.WalletCredit:
			newBalance += adj.Amount
		case entity.WalletDebit:
			newBalance -= adj.Amount
			if newBalance < 0 {
				return entity.ErrInsufficientBalance
			}
		default:
			return fmt.Errorf("unknown wallet transaction type: %s", adj.Type)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE users SET wallet_balance = $1 WHERE user_id = $2
		`, newBalance, adj.UserID)
		if err != nil {
			return fmt.Errorf("could not update wallet balance: %w", err)
		}

		txn = entity.WalletTransaction{
			TransactionID: uuid.NewString(),
			UserID:        adj.UserID,
			BookingID:     nullString(adj.BookingID),
			ActorID:       nullString(adj.ActorID),
			Type:          adj.Type,
			Amount:        adj.Amount,
			Currency:      user.WalletCurrency,
			BalanceAfter:  newBalance,
			Reason:        adj.Reason,
			Reference:     nullString(adj.Reference),
		}

		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO wallet_transactions (
				transaction_id, user_id, booking_id, actor_id, type,
				amount, currency, balance_after, reason, reference
			) VALUES (
				:transaction_id, :user_id, :booking_id, :actor_id, :type,
				:amount, :currency, :balance_after, :reason, :reference
			)
		`, txn)
		if err != nil {
			return fmt.Errorf("could not append wallet transaction: %w", err)
		}

		return nil
	})
	if err != nil {
		return entity.WalletTransaction{}, err
	}
	return txn, nil
}

func (l *WalletPostgresLedger) Balance(ctx context.Context, userID string) (float64, string, error) {
	var user entity.User
	err := l.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", entity.ErrNotFound
		}
		return 0, "", fmt.Errorf("could not get user: %w", err)
	}
	return user.WalletBalance, user.WalletCurrency, nil
}

func (l *WalletPostgresLedger) RecentTransactions(ctx context.Context, userID string, limit int) ([]entity.WalletTransaction, error) {
	if limit <= 0 {
		limit = 10
	}

	var txns []entity.WalletTransaction
	err := l.db.SelectContext(ctx, &txns, `
		SELECT * FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list wallet transactions: %w", err)
	}
	return txns, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
