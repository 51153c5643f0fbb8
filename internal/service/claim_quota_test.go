package service_test

import (
	"context"
	"plate-rescue/config"
	"plate-rescue/internal/database"
	"plate-rescue/internal/model"
	"plate-rescue/internal/repository"
	"plate-rescue/internal/service"
	apperrors "plate-rescue/pkg/app_errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimQuotaTracker_DayBounds(t *testing.T) {
	taipei := time.FixedZone("UTC+8", 8*60*60)

	t.Run("UTC", func(t *testing.T) {
		q := service.NewClaimQuotaTracker(nil, nil, nil, config.QuotaConfig{DailyLimit: 2, Location: time.UTC})

		start, end := q.DayBounds(time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC))

		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), end)
		assert.Equal(t, 2, q.Limit())
	})

	t.Run("ConfiguredZone", func(t *testing.T) {
		q := service.NewClaimQuotaTracker(nil, nil, nil, config.QuotaConfig{DailyLimit: 2, Location: taipei})

		// 18:00 UTC is already the next day at UTC+8
		start, end := q.DayBounds(time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC))

		assert.True(t, start.Equal(time.Date(2025, 3, 1, 16, 0, 0, 0, time.UTC)))
		assert.True(t, end.Equal(time.Date(2025, 3, 2, 16, 0, 0, 0, time.UTC)))
	})

	t.Run("NilLocationDefaultsToUTC", func(t *testing.T) {
		q := service.NewClaimQuotaTracker(nil, nil, nil, config.QuotaConfig{DailyLimit: 2})

		start, _ := q.DayBounds(time.Date(2025, 3, 1, 5, 0, 0, 0, taipei))

		assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), start)
	})
}

func TestClaimQuotaTracker_CheckAndReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidQuantity", func(t *testing.T) {
		q := service.NewClaimQuotaTracker(nil, nil, nil, config.QuotaConfig{DailyLimit: 2})

		_, err := q.CheckAndReserve(ctx, nil, 1, 0, time.Now())

		assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)
	})

	t.Run("CountsOnlyToday", func(t *testing.T) {
		e := newTestEngine(t)
		restaurant := newActor(t, "bistro", model.RoleRestaurant)
		donor := newActor(t, "donor", model.RoleDonor)
		needy := newActor(t, "needy", model.RoleNeedy)
		plateID := openPlate(t, restaurant, "5.00", 4)

		first := e.donate(t, donor, plateID, 1)
		yesterday := time.Now().Add(-30 * time.Hour)
		err := database.WithTx(ctx, testDB, pgx.TxOptions{}, func(tx pgx.Tx) error {
			_, err := e.reservations.MarkClaimed(ctx, tx, first.ID, needy.UserID, "12345678", yesterday)
			return err
		})
		require.NoError(t, err)

		q := service.NewClaimQuotaTracker(testDB, repository.NewUserRepository(testDB), e.reservations,
			config.QuotaConfig{DailyLimit: 2, Location: time.UTC})

		used, err := q.UsedToday(ctx, needy.UserID, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 0, used)

		err = database.WithTx(ctx, testDB, pgx.TxOptions{}, func(tx pgx.Tx) error {
			used, err := q.CheckAndReserve(ctx, tx, needy.UserID, 2, time.Now())
			assert.Equal(t, 0, used)
			return err
		})
		require.NoError(t, err)

		err = database.WithTx(ctx, testDB, pgx.TxOptions{}, func(tx pgx.Tx) error {
			_, err := q.CheckAndReserve(ctx, tx, needy.UserID, 3, time.Now())
			return err
		})
		assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		e := newTestEngine(t)
		q := service.NewClaimQuotaTracker(testDB, repository.NewUserRepository(testDB), e.reservations,
			config.QuotaConfig{DailyLimit: 2})

		err := database.WithTx(ctx, testDB, pgx.TxOptions{}, func(tx pgx.Tx) error {
			_, err := q.CheckAndReserve(ctx, tx, 4242, 1, time.Now())
			return err
		})
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
