package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelbook/db"
	"travelbook/entity"
)

func storeTestPayment(t *testing.T, userID, bookingID string) entity.Payment {
	t.Helper()

	fare := entity.CalculateFareBreakdown(1000, 0, 0, "INR", nil)
	p := entity.Payment{
		PaymentID:       uuid.NewString(),
		BookingID:       bookingID,
		UserID:          userID,
		Method:          entity.MethodRazorpay,
		Provider:        "razorpay",
		ProviderOrderID: sql.NullString{String: "order_" + uuid.NewString()[:8], Valid: true},
		Amount:          fare.PayableAmount,
		Currency:        fare.Currency,
		Status:          entity.PaymentStatePending,
		Attempts:        1,
		Breakdown:       fare,
		Metadata:        entity.Metadata{},
	}

	repo := db.NewPaymentsPostgresRepository(db.GetDb(t))
	require.NoError(t, repo.Store(context.Background(), p))

	return p
}

func TestPaymentsRepository_breakdownRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := db.NewPaymentsPostgresRepository(db.GetDb(t))
	userID := storeTestUser(t, 0)

	b := newTestBooking(userID)
	require.NoError(t, db.NewBookingsPostgresRepository(db.GetDb(t)).Store(ctx, b))

	stored := storeTestPayment(t, userID, b.BookingID)

	got, err := repo.Get(ctx, stored.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, stored.Breakdown, got.Breakdown)
	assert.Equal(t, stored.Amount, got.Amount)
}

func TestPaymentsRepository_getByProviderOrderID(t *testing.T) {
	ctx := context.Background()
	repo := db.NewPaymentsPostgresRepository(db.GetDb(t))
	userID := storeTestUser(t, 0)

	b := newTestBooking(userID)
	require.NoError(t, db.NewBookingsPostgresRepository(db.GetDb(t)).Store(ctx, b))

	stored := storeTestPayment(t, userID, b.BookingID)

	got, err := repo.GetByProviderOrderID(ctx, stored.ProviderOrderID.String)
	require.NoError(t, err)
	assert.Equal(t, stored.PaymentID, got.PaymentID)

	_, err = repo.GetByProviderOrderID(ctx, "order_missing")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestPaymentsRepository_update(t *testing.T) {
	ctx := context.Background()
	repo := db.NewPaymentsPostgresRepository(db.GetDb(t))
	userID := storeTestUser(t, 0)

	b := newTestBooking(userID)
	require.NoError(t, db.NewBookingsPostgresRepository(db.GetDb(t)).Store(ctx, b))

	stored := storeTestPayment(t, userID, b.BookingID)

	err := repo.Update(ctx, stored.PaymentID, func(p *entity.Payment) error {
		p.Status = entity.PaymentStatePaid
		p.ProviderPaymentID = sql.NullString{String: "pay_123", Valid: true}
		p.Metadata = p.Metadata.Merge(entity.Metadata{"webhook_event_id": "evt_1"})
		return nil
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, stored.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatePaid, got.Status)
	assert.Equal(t, "pay_123", got.ProviderPaymentID.String)
	assert.Equal(t, "evt_1", got.Metadata["webhook_event_id"])
}

func TestPaymentsRepository_historyByUser(t *testing.T) {
	ctx := context.Background()
	repo := db.NewPaymentsPostgresRepository(db.GetDb(t))
	userID := storeTestUser(t, 0)

	b := newTestBooking(userID)
	require.NoError(t, db.NewBookingsPostgresRepository(db.GetDb(t)).Store(ctx, b))

	for i := 0; i < 3; i++ {
		storeTestPayment(t, userID, b.BookingID)
	}

	history, err := repo.HistoryByUser(ctx, userID, 2)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
