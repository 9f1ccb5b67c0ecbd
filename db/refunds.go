package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"travelbook/entity"
)

type RefundsPostgresRepository struct {
	db *sqlx.DB
}

func NewRefundsPostgresRepository(db *sqlx.DB) *RefundsPostgresRepository {
	if db == nil {
		panic("db is nil")
	}
	return &RefundsPostgresRepository{db: db}
}

func (r *RefundsPostgresRepository) Store(ctx context.Context, refund entity.Refund) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO refunds (
			refund_id, booking_id, payment_id, user_id,
			amount_requested, amount_approved, reason, status, timeline
		) VALUES (
			:refund_id, :booking_id, :payment_id, :user_id,
			:amount_requested, :amount_approved, :reason, :status, :timeline
		)
	`, refund)
	if err != nil {
		return fmt.Errorf("could not store refund: %w", err)
	}
	return nil
}

func (r *RefundsPostgresRepository) Get(ctx context.Context, refundID string) (entity.Refund, error) {
	var refund entity.Refund
	err := r.db.GetContext(ctx, &refund, `
		SELECT * FROM refunds WHERE refund_id = $1
	`, refundID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Refund{}, entity.ErrNotFound
		}
		return entity.Refund{}, fmt.Errorf("could not get refund: %w", err)
	}
	return refund, nil
}

func (r *RefundsPostgresRepository) Update(ctx context.Context, refundID string, updateFn func(refund *entity.Refund) error) error {
	return updateInTx(ctx, r.db, sql.LevelRepeatableRead, func(ctx context.Context, tx *sqlx.Tx) error {
		var refund entity.Refund
		err := tx.GetContext(ctx, &refund, `
			SELECT * FROM refunds WHERE refund_id = $1 FOR UPDATE
		`, refundID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return entity.ErrNotFound
			}
			return fmt.Errorf("could not get refund: %w", err)
		}

		if err := updateFn(&refund); err != nil {
			return err
		}

		_, err = tx.NamedExecContext(ctx, `
			UPDATE refunds SET
				amount_approved = :amount_approved,
				reason = :reason,
				status = :status,
				timeline = :timeline,
				updated_at = NOW()
			WHERE refund_id = :refund_id
		`, refund)
		if err != nil {
			return fmt.Errorf("could not update refund: %w", err)
		}
		return nil
	})
}

func (r *RefundsPostgresRepository) FindByBooking(ctx context.Context, bookingID string) ([]entity.Refund, error) {
	var refunds []entity.Refund
	err := r.db.SelectContext(ctx, &refunds, `
		SELECT * FROM refunds WHERE booking_id = $1 ORDER BY created_at DESC
	`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("could not list refunds: %w", err)
	}
	return refunds, nil
}
