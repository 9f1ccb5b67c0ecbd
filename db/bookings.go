package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"travelbook/entity"
)

type BookingsPostgresRepository struct {
	db *sqlx.DB
}

func NewBookingsPostgresRepository(db *sqlx.DB) *BookingsPostgresRepository {
	if db == nil {
		panic("db is nil")
	}
	return &BookingsPostgresRepository{db: db}
}

func (r *BookingsPostgresRepository) Store(ctx context.Context, booking entity.Booking) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO bookings (
			booking_id, booking_code, user_id, guide_id, package_id, destination_id,
			booking_type, status, payment_status,
			base_fare, taxes, fees, discounts, total, currency, wallet_amount, payable_amount,
			travel_from, travel_to, start_date, end_date, passengers,
			coupon_code, coupon_discount, wallet_used, timeline, invoice_number, ticket_number
		) VALUES (
			:booking_id, :booking_code, :user_id, :guide_id, :package_id, :destination_id,
			:booking_type, :status, :payment_status,
			:base_fare, :taxes, :fees, :discounts, :total, :currency, :wallet_amount, :payable_amount,
			:travel_from, :travel_to, :start_date, :end_date, :passengers,
			:coupon_code, :coupon_discount, :wallet_used, :timeline, :invoice_number, :ticket_number
		)
	`, booking)
	if err != nil {
		return fmt.Errorf("could not store booking: %w", err)
	}
	return nil
}

func (r *BookingsPostgresRepository) Get(ctx context.Context, bookingID string) (entity.Booking, error) {
	var booking entity.Booking
	err := r.db.GetContext(ctx, &booking, `
		SELECT * FROM bookings WHERE booking_id = $1
	`, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Booking{}, entity.ErrNotFound
		}
		return entity.Booking{}, fmt.Errorf("could not get booking: %w", err)
	}
	return booking, nil
}

func (r *BookingsPostgresRepository) GetByCode(ctx context.Context, bookingCode string) (entity.Booking, error) {
	var booking entity.Booking
	err := r.db.GetContext(ctx, &booking, `
		SELECT * FROM bookings WHERE booking_code = $1
	`, bookingCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Booking{}, entity.ErrNotFound
		}
		return entity.Booking{}, fmt.Errorf("could not get booking by code: %w", err)
	}
	return booking, nil
}

// Update loads the booking inside a repeatable-read transaction, applies the
// update function and writes the result back. Concurrent webhook deliveries
// for the same booking serialize here.
func (r *BookingsPostgresRepository) Update(
	ctx context.Context,
	bookingID string,
	update func(booking *entity.Booking) error,
) error {
	return updateInTx(ctx, r.db, sql.LevelRepeatableRead, func(ctx context.Context, tx *sqlx.Tx) error {
		var booking entity.Booking
		err := tx.GetContext(ctx, &booking, `
			SELECT * FROM bookings WHERE booking_id = $1 FOR UPDATE
		`, bookingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return entity.ErrNotFound
			}
			return fmt.Errorf("could not get booking for update: %w", err)
		}

		if err := update(&booking); err != nil {
			return err
		}

		_, err = tx.NamedExecContext(ctx, `
			UPDATE bookings SET
				guide_id = :guide_id,
				status = :status,
				payment_status = :payment_status,
				base_fare = :base_fare,
				taxes = :taxes,
				fees = :fees,
				discounts = :discounts,
				total = :total,
				currency = :currency,
				wallet_amount = :wallet_amount,
				payable_amount = :payable_amount,
				coupon_code = :coupon_code,
				coupon_discount = :coupon_discount,
				wallet_used = :wallet_used,
				timeline = :timeline,
				invoice_number = :invoice_number,
				ticket_number = :ticket_number,
				updated_at = NOW()
			WHERE booking_id = :booking_id
		`, booking)
		if err != nil {
			return fmt.Errorf("could not update booking: %w", err)
		}

		return nil
	})
}

func (r *BookingsPostgresRepository) FindByUser(ctx context.Context, userID string) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT * FROM bookings WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list bookings: %w", err)
	}
	return bookings, nil
}
