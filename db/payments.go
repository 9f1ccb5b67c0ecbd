package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"travelbook/entity"
)

type PaymentsPostgresRepository struct {
	db *sqlx.DB
}

func NewPaymentsPostgresRepository(db *sqlx.DB) *PaymentsPostgresRepository {
	if db == nil {
		panic("db is nil")
	}
	return &PaymentsPostgresRepository{db: db}
}

// paymentRow carries the fare breakdown snapshot as raw JSONB.
type paymentRow struct {
	entity.Payment
	BreakdownJSON []byte `db:"breakdown"`
}

func newPaymentRow(payment entity.Payment) (paymentRow, error) {
	breakdown, err := json.Marshal(payment.Breakdown)
	if err != nil {
		return paymentRow{}, fmt.Errorf("could not marshal fare breakdown: %w", err)
	}
	return paymentRow{Payment: payment, BreakdownJSON: breakdown}, nil
}

func (row paymentRow) toPayment() (entity.Payment, error) {
	payment := row.Payment
	if len(row.BreakdownJSON) > 0 {
		if err := json.Unmarshal(row.BreakdownJSON, &payment.Breakdown); err != nil {
			return entity.Payment{}, fmt.Errorf("could not unmarshal fare breakdown: %w", err)
		}
	}
	return payment, nil
}

func (r *PaymentsPostgresRepository) Store(ctx context.Context, payment entity.Payment) error {
	row, err := newPaymentRow(payment)
	if err != nil {
		return err
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO payments (
			payment_id, booking_id, user_id, method, provider,
			provider_order_id, provider_payment_id, amount, currency, status,
			attempts, breakdown, refunded_amount, metadata
		) VALUES (
			:payment_id, :booking_id, :user_id, :method, :provider,
			:provider_order_id, :provider_payment_id, :amount, :currency, :status,
			:attempts, :breakdown, :refunded_amount, :metadata
		)
	`, row)
	if err != nil {
		return fmt.Errorf("could not store payment: %w", err)
	}
	return nil
}

func (r *PaymentsPostgresRepository) Get(ctx context.Context, paymentID string) (entity.Payment, error) {
	var row paymentRow
	err := r.db.GetContext(ctx, &row, `
		SELECT * FROM payments WHERE payment_id = $1
	`, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Payment{}, entity.ErrNotFound
		}
		return entity.Payment{}, fmt.Errorf("could not get payment: %w", err)
	}
	return row.toPayment()
}

// GetByProviderOrderID resolves a gateway order/intent id back to the payment
// it belongs to. Webhook reconciliation enters through here.
func (r *PaymentsPostgresRepository) GetByProviderOrderID(ctx context.Context, providerOrderID string) (entity.Payment, error) {
	var row paymentRow
	err := r.db.GetContext(ctx, &row, `
		SELECT * FROM payments WHERE provider_order_id = $1 ORDER BY created_at DESC LIMIT 1
	`, providerOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Payment{}, entity.ErrNotFound
		}
		return entity.Payment{}, fmt.Errorf("could not get payment by provider order id: %w", err)
	}
	return row.toPayment()
}

func (r *PaymentsPostgresRepository) Update(
	ctx context.Context,
	paymentID string,
	update func(payment *entity.Payment) error,
) error {
	return updateInTx(ctx, r.db, sql.LevelRepeatableRead, func(ctx context.Context, tx *sqlx.Tx) error {
		var row paymentRow
		err := tx.GetContext(ctx, &row, `
			SELECT * FROM payments WHERE payment_id = $1 FOR UPDATE
		`, paymentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return entity.ErrNotFound
			}
			return fmt.Errorf("could not get payment for update: %w", err)
		}

		payment, err := row.toPayment()
		if err != nil {
			return err
		}

		if err := update(&payment); err != nil {
			return err
		}

		updated, err := newPaymentRow(payment)
		if err != nil {
			return err
		}

		_, err = tx.NamedExecContext(ctx, `
			UPDATE payments SET
				provider_order_id = :provider_order_id,
				provider_payment_id = :provider_payment_id,
				amount = :amount,
				status = :status,
				attempts = :attempts,
				breakdown = :breakdown,
				refunded_amount = :refunded_amount,
				metadata = :metadata,
				updated_at = NOW()
			WHERE payment_id = :payment_id
		`, updated)
		if err != nil {
			return fmt.Errorf("could not update payment: %w", err)
		}

		return nil
	})
}

// HistoryByUser returns the caller's most recent payments, newest first.
func (r *PaymentsPostgresRepository) HistoryByUser(ctx context.Context, userID string, limit int) ([]entity.Payment, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []paymentRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM payments WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list payments: %w", err)
	}

	payments := make([]entity.Payment, 0, len(rows))
	for _, row := range rows {
		payment, err := row.toPayment()
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, nil
}
