package repository

import (
	"context"
	"errors"
	"fmt"
	"plate-rescue/internal/model"
	apperrors "plate-rescue/pkg/app_errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reservationColumns = `id, user_id, donor_id, plate_id, qty, status, pickup_code,
		created_at, confirmed_at, claimed_at, picked_up_at, updated_at`

type ReservationRepository interface {
	FindByID(ctx context.Context, id int) (*model.Reservation, error)
	ListByUserID(ctx context.Context, userID int) ([]*model.Reservation, error)
	ListByPlateID(ctx context.Context, plateID int) ([]*model.Reservation, error)
	ListDonated(ctx context.Context, now time.Time) ([]*model.Reservation, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) (*model.Reservation, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Reservation, error)
	MarkConfirmed(ctx context.Context, tx pgx.Tx, id int, pickupCode string, at time.Time) (*model.Reservation, error)
	MarkDonated(ctx context.Context, tx pgx.Tx, id int, donorID int, at time.Time) (*model.Reservation, error)
	MarkCancelled(ctx context.Context, tx pgx.Tx, id int) (*model.Reservation, error)
	MarkClaimed(ctx context.Context, tx pgx.Tx, id int, userID int, pickupCode string, at time.Time) (*model.Reservation, error)
	MarkPickedUp(ctx context.Context, tx pgx.Tx, id int, at time.Time) (*model.Reservation, error)
	ReduceDonatedQuantity(ctx context.Context, tx pgx.Tx, id int, quantity int) (*model.Reservation, error)
	SumClaimedQuantity(ctx context.Context, tx pgx.Tx, userID int, from, to time.Time) (int, error)
}

type ReservationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &ReservationRepositoryImpl{
		pool: pool,
	}
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var reservation model.Reservation
	err := row.Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.DonorID,
		&reservation.PlateID,
		&reservation.Quantity,
		&reservation.Status,
		&reservation.PickupCode,
		&reservation.CreatedAt,
		&reservation.ConfirmedAt,
		&reservation.ClaimedAt,
		&reservation.PickedUpAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func collectReservations(rows pgx.Rows) ([]*model.Reservation, error) {
	defer rows.Close()

	reservations := make([]*model.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (r *ReservationRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return scanReservation(r.pool.QueryRow(ctx, query, id))
}

// ListByUserID returns reservations where the user is the beneficiary or the donor.
func (r *ReservationRepositoryImpl) ListByUserID(ctx context.Context, userID int) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1 OR donor_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (r *ReservationRepositoryImpl) ListByPlateID(ctx context.Context, plateID int) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE plate_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, plateID)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListDonated returns the free pool: DONATED reservations whose plate is still in its pickup window.
func (r *ReservationRepositoryImpl) ListDonated(ctx context.Context, now time.Time) ([]*model.Reservation, error) {
	query := `
		SELECT r.id, r.user_id, r.donor_id, r.plate_id, r.qty, r.status, r.pickup_code,
		       r.created_at, r.confirmed_at, r.claimed_at, r.picked_up_at, r.updated_at
		FROM reservations r
		JOIN plates p ON p.id = r.plate_id
		WHERE r.status = $1
		  AND p.window_start <= $2 AND p.window_end > $2
		ORDER BY r.created_at ASC, r.id ASC
	`

	rows, err := r.pool.Query(ctx, query, model.ReservationStatusDonated, now.UTC())
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (r *ReservationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) (*model.Reservation, error) {
	query := `
		INSERT INTO reservations (
			user_id, donor_id, plate_id, qty, status, pickup_code, confirmed_at, claimed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + reservationColumns

	created, err := scanReservation(tx.QueryRow(ctx, query,
		reservation.UserID, reservation.DonorID, reservation.PlateID, reservation.Quantity,
		reservation.Status, reservation.PickupCode, reservation.ConfirmedAt, reservation.ClaimedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	return created, nil
}

// FindByIDWithLock takes the reservation row lock for the rest of tx.
func (r *ReservationRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	return scanReservation(tx.QueryRow(ctx, query, id))
}

// transition runs a guarded UPDATE ... WHERE status = <from>. A row that
// moved out of the expected status yields ErrWrongState.
func (r *ReservationRepositoryImpl) transition(ctx context.Context, tx pgx.Tx, query string, args ...any) (*model.Reservation, error) {
	reservation, err := scanReservation(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, apperrors.ErrReservationNotFound) {
			return nil, apperrors.ErrWrongState
		}
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}
	return reservation, nil
}

func (r *ReservationRepositoryImpl) MarkConfirmed(ctx context.Context, tx pgx.Tx, id int, pickupCode string, at time.Time) (*model.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $1, pickup_code = $2, confirmed_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + reservationColumns

	return r.transition(ctx, tx, query,
		model.ReservationStatusConfirmed, pickupCode, at.UTC(), id, model.ReservationStatusHeld)
}

// MarkDonated turns a held reservation into pooled inventory: the holder is cleared and recorded as donor.
func (r *ReservationRepositoryImpl) MarkDonated(ctx context.Context, tx pgx.Tx, id int, donorID int, at time.Time) (*model.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $1, user_id = NULL, donor_id = $2, confirmed_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + reservationColumns

	return r.transition(ctx, tx, query,
		model.ReservationStatusDonated, donorID, at.UTC(), id, model.ReservationStatusHeld)
}

func (r *ReservationRepositoryImpl) MarkCancelled(ctx context.Context, tx pgx.Tx, id int) (*model.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + reservationColumns

	return r.transition(ctx, tx, query,
		model.ReservationStatusCancelled, time.Now().UTC(), id, model.ReservationStatusHeld)
}

func (r *ReservationRepositoryImpl) MarkClaimed(ctx context.Context, tx pgx.Tx, id int, userID int, pickupCode string, at time.Time) (*model.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $1, user_id = $2, pickup_code = $3,
		    claimed_at = $4, confirmed_at = $4, updated_at = $4
		WHERE id = $5 AND status = $6
		RETURNING ` + reservationColumns

	return r.transition(ctx, tx, query,
		model.ReservationStatusClaimed, userID, pickupCode, at.UTC(), id, model.ReservationStatusDonated)
}

func (r *ReservationRepositoryImpl) MarkPickedUp(ctx context.Context, tx pgx.Tx, id int, at time.Time) (*model.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $1, picked_up_at = $2, updated_at = $2
		WHERE id = $3 AND status IN ($4, $5)
		RETURNING ` + reservationColumns

	return r.transition(ctx, tx, query,
		model.ReservationStatusPickedUp, at.UTC(), id,
		model.ReservationStatusConfirmed, model.ReservationStatusClaimed)
}

// ReduceDonatedQuantity shrinks a DONATED reservation in place; it must keep at least one unit.
func (r *ReservationRepositoryImpl) ReduceDonatedQuantity(ctx context.Context, tx pgx.Tx, id int, quantity int) (*model.Reservation, error) {
	if quantity <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}

	query := `
		UPDATE reservations
		SET qty = qty - $1, updated_at = $2
		WHERE id = $3 AND status = $4 AND qty > $1
		RETURNING ` + reservationColumns

	reservation, err := scanReservation(tx.QueryRow(ctx, query,
		quantity, time.Now().UTC(), id, model.ReservationStatusDonated))
	if err != nil {
		if errors.Is(err, apperrors.ErrReservationNotFound) {
			return nil, apperrors.ErrInsufficientStock
		}
		return nil, fmt.Errorf("failed to split reservation: %w", err)
	}
	return reservation, nil
}

// SumClaimedQuantity totals the user's CLAIMED/PICKED_UP qty with claimed_at in [from, to).
func (r *ReservationRepositoryImpl) SumClaimedQuantity(ctx context.Context, tx pgx.Tx, userID int, from, to time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(qty), 0)
		FROM reservations
		WHERE user_id = $1
		  AND status IN ($2, $3)
		  AND claimed_at >= $4 AND claimed_at < $5
	`

	var total int
	err := tx.QueryRow(ctx, query, userID,
		model.ReservationStatusClaimed, model.ReservationStatusPickedUp,
		from.UTC(), to.UTC(),
	).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}
