package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelbook/booking"
	"travelbook/db"
	"travelbook/entity"
)

func newTestBooking(userID string) entity.Booking {
	b := entity.Booking{
		BookingID:     uuid.NewString(),
		BookingCode:   booking.NewBookingCode(),
		UserID:        userID,
		BookingType:   entity.BookingTypePackage,
		Status:        entity.BookingStatusPending,
		PaymentStatus: entity.PaymentStatePending,
		FareBreakdown: entity.CalculateFareBreakdown(1000, 0, 0, "INR", nil),
		TravelDetails: entity.TravelDetails{
			From:       "DEL",
			To:         "GOI",
			StartDate:  time.Now().Add(24 * time.Hour),
			EndDate:    time.Now().Add(72 * time.Hour),
			Passengers: 2,
		},
	}
	b.AppendTimeline(string(entity.BookingStatusPending), "Booking created", userID)
	return b
}

func TestBookingsRepository_storeAndGet(t *testing.T) {
	ctx := context.Background()
	repo := db.NewBookingsPostgresRepository(db.GetDb(t))
	userID := storeTestUser(t, 0)

	stored := newTestBooking(userID)
	require.NoError(t, repo.Store(ctx, stored))

	got, err := repo.Get(ctx, stored.BookingID)
	require.NoError(t, err)
	assert.Equal(t, stored.BookingCode, got.BookingCode)
	assert.Equal(t, entity.BookingStatusPending, got.Status)
	assert.Equal(t, 1050.0, got.Total)
	require.Len(t, got.Timeline, 1)
	assert.Equal(t, "Booking created", got.Timeline[0].Note)

	byCode, err := repo.GetByCode(ctx, stored.BookingCode)
	require.NoError(t, err)
	assert.Equal(t, stored.BookingID, byCode.BookingID)

	_, err = repo.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestBookingsRepository_updateAppliesTransition(t *testing.T) {
	ctx := context.Background()
	repo := db.NewBookingsPostgresRepository(db.GetDb(t))
	userID := storeTestUser(t, 0)

	stored := newTestBooking(userID)
	require.NoError(t, repo.Store(ctx, stored))

	err := repo.Update(ctx, stored.BookingID, func(b *entity.Booking) error {
		b.PaymentStatus = entity.PaymentStatePaid
		return b.Transition(entity.BookingStatusConfirmed, "Payment captured", "system")
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, stored.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, got.Status)
	assert.Equal(t, entity.PaymentStatePaid, got.PaymentStatus)
	assert.Len(t, got.Timeline, 2)
}

func TestBookingsRepository_updateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := db.NewBookingsPostgresRepository(db.GetDb(t))
	userID := storeTestUser(t, 0)

	stored := newTestBooking(userID)
	require.NoError(t, repo.Store(ctx, stored))

	err := repo.Update(ctx, stored.BookingID, func(b *entity.Booking) error {
		return b.Transition(entity.BookingStatusCompleted, "", "system")
	})

	var transitionErr entity.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	got, err := repo.Get(ctx, stored.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusPending, got.Status)
}

func TestBookingsRepository_findByUser(t *testing.T) {
	ctx := context.Background()
	repo := db.NewBookingsPostgresRepository(db.GetDb(t))
	userID := storeTestUser(t, 0)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Store(ctx, newTestBooking(userID)))
	}

	list, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
