package cache_test

import (
	"context"
	"log"
	"os"
	"plate-rescue/internal/cache"
	"plate-rescue/internal/model"
	"plate-rescue/internal/testutil"
	apperrors "plate-rescue/pkg/app_errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRdb *redis.Client

func TestMain(m *testing.M) {
	rdb, cleanup, err := testutil.SetupRedisOnly()
	if err != nil {
		log.Printf("redis unavailable, cache tests will be skipped: %v", err)
	} else {
		testRdb = rdb
	}

	code := m.Run()
	if cleanup != nil {
		cleanup()
	}
	os.Exit(code)
}

func setupCache(t *testing.T) cache.PlateAvailabilityCache {
	t.Helper()
	testutil.RequireRedis(t, testRdb)
	ctx := context.Background()
	keys, err := testRdb.Keys(ctx, "plate:*:availability").Result()
	require.NoError(t, err)
	keys = append(keys, "plates:available")
	require.NoError(t, testRdb.Del(ctx, keys...).Err())
	return cache.NewPlateAvailabilityCache(testRdb)
}

func newPlate(id int, available int, start, end time.Time) *model.Plate {
	return &model.Plate{
		ID:                id,
		Title:             "Ramen",
		Price:             decimal.RequireFromString("8.25"),
		QuantityOriginal:  10,
		QuantityAvailable: available,
		WindowStart:       start,
		WindowEnd:         end,
		IsActive:          true,
	}
}

func TestPlateAvailabilityCache_SetAndGet(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	applied, err := c.Set(ctx, newPlate(1, 7, now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PlateID)
	assert.Equal(t, 7, got.QuantityAvailable)
	assert.Equal(t, "8.25", got.Price.StringFixed(2))
	assert.True(t, got.WindowEnd.Equal(now.Add(time.Hour)))

	_, err = c.Get(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrPlateNotFound)
}

func TestPlateAvailabilityCache_IgnoresStaleSnapshot(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := c.Set(ctx, newPlate(2, 3, now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)

	// an older read with more stock arrives late
	applied, err := c.Set(ctx, newPlate(2, 6, now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := c.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, got.QuantityAvailable)
}

func TestPlateAvailabilityCache_List(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := c.Set(ctx, newPlate(1, 2, now.Add(-time.Hour), now.Add(3*time.Hour)))
	require.NoError(t, err)
	_, err = c.Set(ctx, newPlate(2, 5, now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)
	// sold out
	_, err = c.Set(ctx, newPlate(3, 0, now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)
	// window not open yet
	_, err = c.Set(ctx, newPlate(4, 4, now.Add(time.Hour), now.Add(2*time.Hour)))
	require.NoError(t, err)
	// already closed
	_, err = c.Set(ctx, newPlate(5, 4, now.Add(-2*time.Hour), now.Add(-time.Minute)))
	require.NoError(t, err)

	plates, err := c.List(ctx, now)
	require.NoError(t, err)
	require.Len(t, plates, 2)
	assert.Equal(t, 2, plates[0].PlateID, "soonest window end first")
	assert.Equal(t, 1, plates[1].PlateID)
}

func TestPlateAvailabilityCache_Remove(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := c.Set(ctx, newPlate(8, 4, now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)
	require.NoError(t, c.Remove(ctx, 8))

	_, err = c.Get(ctx, 8)
	assert.ErrorIs(t, err, apperrors.ErrPlateNotFound)

	plates, err := c.List(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, plates)
}

func TestPlateAvailabilityCache_InactivePlateIsRemoved(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()
	now := time.Now().UTC()

	p := newPlate(9, 4, now.Add(-time.Hour), now.Add(time.Hour))
	_, err := c.Set(ctx, p)
	require.NoError(t, err)

	p.IsActive = false
	applied, err := c.Set(ctx, p)
	require.NoError(t, err)
	assert.False(t, applied)

	_, err = c.Get(ctx, 9)
	assert.ErrorIs(t, err, apperrors.ErrPlateNotFound)
}
