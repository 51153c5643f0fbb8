package service

import (
	"context"
	"plate-rescue/config"
	"plate-rescue/internal/database"
	"plate-rescue/internal/repository"
	apperrors "plate-rescue/pkg/app_errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// ClaimQuotaTracker enforces the per-day free plate limit for needy users.
type ClaimQuotaTracker struct {
	db           database.TxBeginner
	users        repository.UserRepository
	reservations repository.ReservationRepository
	limit        int
	location     *time.Location
}

func NewClaimQuotaTracker(
	db database.TxBeginner,
	userRepository repository.UserRepository,
	reservationRepository repository.ReservationRepository,
	cfg config.QuotaConfig,
) *ClaimQuotaTracker {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ClaimQuotaTracker{
		db:           db,
		users:        userRepository,
		reservations: reservationRepository,
		limit:        cfg.DailyLimit,
		location:     loc,
	}
}

func (q *ClaimQuotaTracker) Limit() int {
	return q.limit
}

// DayBounds returns [start, end) of the calendar day containing now.
func (q *ClaimQuotaTracker) DayBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.In(q.location).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, q.location)
	return start, start.AddDate(0, 0, 1)
}

// CheckAndReserve locks the user row, which serializes every claim by that
// user until tx ends, and fails with ErrQuotaExceeded if qty more plates would
// go over the limit. It returns the quantity already used today.
func (q *ClaimQuotaTracker) CheckAndReserve(ctx context.Context, tx pgx.Tx, userID int, qty int, now time.Time) (int, error) {
	if qty <= 0 {
		return 0, apperrors.ErrInvalidQuantity
	}

	if _, err := q.users.FindByIDWithLock(ctx, tx, userID); err != nil {
		return 0, err
	}

	from, to := q.DayBounds(now)
	used, err := q.reservations.SumClaimedQuantity(ctx, tx, userID, from, to)
	if err != nil {
		return 0, err
	}

	if used+qty > q.limit {
		return used, apperrors.ErrQuotaExceeded
	}

	return used, nil
}

// UsedToday is the read-only view for display; it takes no lock.
func (q *ClaimQuotaTracker) UsedToday(ctx context.Context, userID int, now time.Time) (int, error) {
	var used int
	err := database.WithTx(ctx, q.db, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		from, to := q.DayBounds(now)
		var err error
		used, err = q.reservations.SumClaimedQuantity(ctx, tx, userID, from, to)
		return err
	})
	if err != nil {
		return 0, err
	}
	return used, nil
}
