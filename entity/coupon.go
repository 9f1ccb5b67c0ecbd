package entity

import (
	"database/sql"
	"strings"
	"time"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

type Coupon struct {
	Code           string          `db:"code"`
	DiscountType   DiscountType    `db:"discount_type"`
	DiscountValue  float64         `db:"discount_value"`
	MaxDiscount    sql.NullFloat64 `db:"max_discount"`
	MinOrderAmount sql.NullFloat64 `db:"min_order_amount"`
	StartDate      time.Time       `db:"start_date"`
	EndDate        time.Time       `db:"end_date"`
	UsageLimit     sql.NullInt64   `db:"usage_limit"`
	UsagePerUser   sql.NullInt64   `db:"usage_per_user"`
	IsActive       bool            `db:"is_active"`
	Redemptions    int64           `db:"redemptions"`
}

// CouponValidation is the outcome of checking a coupon against an order.
// Reason is set only when Valid is false.
type CouponValidation struct {
	Valid          bool
	DiscountAmount float64
	Reason         string
}

const (
	ReasonCouponNotFound     = "Coupon not found"
	ReasonCouponExpired      = "Coupon expired"
	ReasonCouponDisabled     = "Coupon disabled"
	ReasonAmountBelowMinimum = "Amount below minimum"
	ReasonUsageLimitReached  = "Usage limit reached"
)

// NormalizeCouponCode returns the canonical (uppercase) form of a code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks the coupon's temporal and usage constraints against an order
// amount and computes the discount it would grant. It never mutates the
// redemption counter; redemption happens atomically when the payment is
// finalized.
func (c Coupon) Validate(orderAmount float64, now time.Time) CouponValidation {
	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return CouponValidation{Reason: ReasonCouponExpired}
	}
	if !c.IsActive {
		return CouponValidation{Reason: ReasonCouponDisabled}
	}
	if c.MinOrderAmount.Valid && orderAmount < c.MinOrderAmount.Float64 {
		return CouponValidation{Reason: ReasonAmountBelowMinimum}
	}
	if c.UsageLimit.Valid && c.Redemptions >= c.UsageLimit.Int64 {
		return CouponValidation{Reason: ReasonUsageLimitReached}
	}

	var discount float64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = orderAmount * c.DiscountValue / 100
		if c.MaxDiscount.Valid && discount > c.MaxDiscount.Float64 {
			discount = c.MaxDiscount.Float64
		}
	default:
		discount = c.DiscountValue
	}

	return CouponValidation{Valid: true, DiscountAmount: round2(discount)}
}
