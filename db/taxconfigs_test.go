package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelbook/db"
	"travelbook/entity"
)

func TestTaxConfigsRepository_getActivePicksMostRecent(t *testing.T) {
	ctx := context.Background()
	repo := db.NewTaxConfigsPostgresRepository(db.GetDb(t))
	now := time.Now()

	older := entity.TaxConfig{
		ID:            uuid.NewString(),
		GSTPercentage: 5,
		EffectiveFrom: now.Add(-48 * time.Hour),
		IsActive:      true,
	}
	newer := entity.TaxConfig{
		ID:            uuid.NewString(),
		GSTPercentage: 12,
		ServiceCharge: 25,
		EffectiveFrom: now.Add(-time.Hour),
		IsActive:      true,
	}
	expired := entity.TaxConfig{
		ID:            uuid.NewString(),
		GSTPercentage: 18,
		EffectiveFrom: now.Add(-24 * time.Hour),
		EffectiveTo:   sql.NullTime{Time: now.Add(-time.Minute), Valid: true},
		IsActive:      true,
	}
	inactive := entity.TaxConfig{
		ID:            uuid.NewString(),
		GSTPercentage: 28,
		EffectiveFrom: now.Add(-time.Minute),
		IsActive:      false,
	}
	future := entity.TaxConfig{
		ID:            uuid.NewString(),
		GSTPercentage: 40,
		EffectiveFrom: now.Add(time.Hour),
		IsActive:      true,
	}

	for _, cfg := range []entity.TaxConfig{older, newer, expired, inactive, future} {
		require.NoError(t, repo.Store(ctx, cfg))
	}

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, newer.ID, active.ID)
	assert.Equal(t, 12.0, active.GSTPercentage)
}
