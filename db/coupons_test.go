package db_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelbook/db"
	"travelbook/entity"
)

func storeTestCoupon(t *testing.T, usageLimit int64) string {
	t.Helper()

	code := entity.NormalizeCouponCode("C" + uuid.NewString()[:8])
	repo := db.NewCouponsPostgresRepository(db.GetDb(t))
	err := repo.Store(context.Background(), entity.Coupon{
		Code:          code,
		DiscountType:  entity.DiscountPercentage,
		DiscountValue: 10,
		StartDate:     time.Now().Add(-time.Hour),
		EndDate:       time.Now().Add(time.Hour),
		UsageLimit:    sql.NullInt64{Int64: usageLimit, Valid: usageLimit > 0},
		IsActive:      true,
	})
	require.NoError(t, err)

	return code
}

func TestCouponsRepository_getByCodeNormalizes(t *testing.T) {
	ctx := context.Background()
	repo := db.NewCouponsPostgresRepository(db.GetDb(t))
	code := storeTestCoupon(t, 0)

	coupon, err := repo.GetByCode(ctx, "  "+code+" ")
	require.NoError(t, err)
	assert.Equal(t, code, coupon.Code)

	_, err = repo.GetByCode(ctx, "NO-SUCH-CODE")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestCouponsRepository_redeemRespectsUsageLimit(t *testing.T) {
	ctx := context.Background()
	repo := db.NewCouponsPostgresRepository(db.GetDb(t))
	code := storeTestCoupon(t, 2)

	require.NoError(t, repo.Redeem(ctx, code))
	require.NoError(t, repo.Redeem(ctx, code))

	err := repo.Redeem(ctx, code)
	var couponErr entity.InvalidCouponError
	require.ErrorAs(t, err, &couponErr)
	assert.Equal(t, entity.ReasonUsageLimitReached, couponErr.Reason)

	coupon, err := repo.GetByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, int64(2), coupon.Redemptions)
}

func TestCouponsRepository_redeemUnlimited(t *testing.T) {
	ctx := context.Background()
	repo := db.NewCouponsPostgresRepository(db.GetDb(t))
	code := storeTestCoupon(t, 0)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Redeem(ctx, code))
	}
}

// A single-use coupon hit concurrently must be redeemed exactly once.
func TestCouponsRepository_redeemRace(t *testing.T) {
	ctx := context.Background()
	repo := db.NewCouponsPostgresRepository(db.GetDb(t))
	code := storeTestCoupon(t, 1)

	const workers = 8
	results := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = repo.Redeem(ctx, code)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	coupon, err := repo.GetByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, int64(1), coupon.Redemptions)
}
