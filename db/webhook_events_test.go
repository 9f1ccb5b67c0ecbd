package db_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelbook/db"
)

func TestWebhookEventsRepository_storeOnce(t *testing.T) {
	ctx := context.Background()
	repo := db.NewWebhookEventsPostgresRepository(db.GetDb(t))
	eventID := uuid.NewString()

	fresh, err := repo.StoreOnce(ctx, "stripe", eventID, "payment_intent.succeeded")
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = repo.StoreOnce(ctx, "stripe", eventID, "payment_intent.succeeded")
	require.NoError(t, err)
	assert.False(t, fresh)

	// same event id from a different provider is a different event
	fresh, err = repo.StoreOnce(ctx, "razorpay", eventID, "payment.captured")
	require.NoError(t, err)
	assert.True(t, fresh)
}
