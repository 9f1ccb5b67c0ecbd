package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"travelbook/entity"
)

type CouponsPostgresRepository struct {
	db *sqlx.DB
}

func NewCouponsPostgresRepository(db *sqlx.DB) *CouponsPostgresRepository {
	if db == nil {
		panic("db is nil")
	}
	return &CouponsPostgresRepository{db: db}
}

func (r *CouponsPostgresRepository) Store(ctx context.Context, coupon entity.Coupon) error {
	coupon.Code = entity.NormalizeCouponCode(coupon.Code)
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO coupons (
			code, discount_type, discount_value, max_discount, min_order_amount,
			start_date, end_date, usage_limit, usage_per_user, is_active, redemptions
		) VALUES (
			:code, :discount_type, :discount_value, :max_discount, :min_order_amount,
			:start_date, :end_date, :usage_limit, :usage_per_user, :is_active, :redemptions
		)
		ON CONFLICT (code) DO NOTHING
	`, coupon)
	if err != nil {
		return fmt.Errorf("could not store coupon: %w", err)
	}
	return nil
}

func (r *CouponsPostgresRepository) GetByCode(ctx context.Context, code string) (entity.Coupon, error) {
	var coupon entity.Coupon
	err := r.db.GetContext(ctx, &coupon, `
		SELECT * FROM coupons WHERE code = $1
	`, entity.NormalizeCouponCode(code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Coupon{}, entity.ErrNotFound
		}
		return entity.Coupon{}, fmt.Errorf("could not get coupon: %w", err)
	}
	return coupon, nil
}

// Redeem consumes one unit of the coupon's usage limit. The conditional
// increment makes concurrent redemption of a single-use coupon safe: whichever
// update loses the race sees redemptions == usage_limit and fails.
func (r *CouponsPostgresRepository) Redeem(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE coupons
		SET redemptions = redemptions + 1
		WHERE code = $1
		  AND (usage_limit IS NULL OR redemptions < usage_limit)
	`, entity.NormalizeCouponCode(code))
	if err != nil {
		return fmt.Errorf("could not redeem coupon: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return entity.InvalidCouponError{Reason: entity.ReasonUsageLimitReached}
	}
	return nil
}
