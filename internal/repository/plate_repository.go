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

const plateColumns = `id, restaurant_id, title, description, price,
		quantity_available, quantity_original, window_start, window_end,
		is_active, created_at, updated_at`

type PlateRepository interface {
	Create(ctx context.Context, plate *model.Plate) (*model.Plate, error)
	FindByID(ctx context.Context, id int) (*model.Plate, error)
	ListAvailable(ctx context.Context, now time.Time) ([]*model.Plate, error)
	ListActive(ctx context.Context, now time.Time) ([]*model.Plate, error)
	ListByRestaurantID(ctx context.Context, restaurantID int) ([]*model.Plate, error)
	Deactivate(ctx context.Context, id int, restaurantID int) error

	// Transaction methods
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Plate, error)
	DecrementStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error
}

type PlateRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPlateRepository(pool *pgxpool.Pool) PlateRepository {
	return &PlateRepositoryImpl{
		pool: pool,
	}
}

func scanPlate(row pgx.Row) (*model.Plate, error) {
	var plate model.Plate
	err := row.Scan(
		&plate.ID,
		&plate.RestaurantID,
		&plate.Title,
		&plate.Description,
		&plate.Price,
		&plate.QuantityAvailable,
		&plate.QuantityOriginal,
		&plate.WindowStart,
		&plate.WindowEnd,
		&plate.IsActive,
		&plate.CreatedAt,
		&plate.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPlateNotFound
		}
		return nil, err
	}
	return &plate, nil
}

func collectPlates(rows pgx.Rows) ([]*model.Plate, error) {
	defer rows.Close()

	plates := make([]*model.Plate, 0)
	for rows.Next() {
		plate, err := scanPlate(rows)
		if err != nil {
			return nil, err
		}
		plates = append(plates, plate)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return plates, nil
}

// Create inserts a new listing; quantity_available always starts equal to quantity_original.
func (r *PlateRepositoryImpl) Create(ctx context.Context, plate *model.Plate) (*model.Plate, error) {
	query := `
		INSERT INTO plates (
			restaurant_id, title, description, price,
			quantity_available, quantity_original, window_start, window_end, is_active)
		VALUES ($1, $2, $3, $4, $5, $5, $6, $7, TRUE)
		RETURNING ` + plateColumns

	created, err := scanPlate(r.pool.QueryRow(ctx, query,
		plate.RestaurantID, plate.Title, plate.Description, plate.Price,
		plate.QuantityOriginal, plate.WindowStart.UTC(), plate.WindowEnd.UTC(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create plate: %w", err)
	}

	return created, nil
}

func (r *PlateRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Plate, error) {
	query := `SELECT ` + plateColumns + ` FROM plates WHERE id = $1`
	return scanPlate(r.pool.QueryRow(ctx, query, id))
}

// ListAvailable returns the marketplace: active, in window, with stock, soonest window end first.
func (r *PlateRepositoryImpl) ListAvailable(ctx context.Context, now time.Time) ([]*model.Plate, error) {
	query := `
		SELECT ` + plateColumns + `
		FROM plates
		WHERE is_active
		  AND quantity_available > 0
		  AND window_start <= $1 AND window_end > $1
		ORDER BY window_end ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, now.UTC())
	if err != nil {
		return nil, err
	}
	return collectPlates(rows)
}

// ListActive also includes plates whose window has not opened yet.
func (r *PlateRepositoryImpl) ListActive(ctx context.Context, now time.Time) ([]*model.Plate, error) {
	query := `
		SELECT ` + plateColumns + `
		FROM plates
		WHERE is_active AND window_end > $1
		ORDER BY window_end ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, now.UTC())
	if err != nil {
		return nil, err
	}
	return collectPlates(rows)
}

func (r *PlateRepositoryImpl) ListByRestaurantID(ctx context.Context, restaurantID int) ([]*model.Plate, error) {
	query := `
		SELECT ` + plateColumns + `
		FROM plates
		WHERE restaurant_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	return collectPlates(rows)
}

// Deactivate hides a listing. Plates are never deleted.
func (r *PlateRepositoryImpl) Deactivate(ctx context.Context, id int, restaurantID int) error {
	query := `
		UPDATE plates
		SET is_active = FALSE, updated_at = $1
		WHERE id = $2 AND restaurant_id = $3
	`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), id, restaurantID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrPlateNotFound
	}

	return nil
}

// FindByIDWithLock takes the plate row lock for the rest of tx.
func (r *PlateRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Plate, error) {
	query := `SELECT ` + plateColumns + ` FROM plates WHERE id = $1 FOR UPDATE`
	return scanPlate(tx.QueryRow(ctx, query, id))
}

func (r *PlateRepositoryImpl) DecrementStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	if quantity <= 0 {
		return apperrors.ErrInvalidQuantity
	}

	query := `
		UPDATE plates
		SET quantity_available = quantity_available - $1, updated_at = $2
		WHERE id = $3 AND quantity_available >= $1
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInsufficientStock
	}

	return nil
}
