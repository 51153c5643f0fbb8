package repository

import (
	"context"
	"errors"
	"fmt"
	"plate-rescue/internal/model"
	apperrors "plate-rescue/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `id, payer_user_id, payee_restaurant_id, reservation_id, amount, type, created_at`

// TransactionRepository is the append-only money ledger. There is no update or delete.
type TransactionRepository interface {
	FindByReservationID(ctx context.Context, reservationID int) (*model.Transaction, error)
	ListByPayerID(ctx context.Context, payerUserID int) ([]*model.Transaction, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, transaction *model.Transaction) (*model.Transaction, error)
}

type TransactionRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) TransactionRepository {
	return &TransactionRepositoryImpl{
		pool: pool,
	}
}

var errTransactionNotFound = errors.New("transaction not found")

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(
		&t.ID,
		&t.PayerUserID,
		&t.PayeeRestaurantID,
		&t.ReservationID,
		&t.Amount,
		&t.Type,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, transaction *model.Transaction) (*model.Transaction, error) {
	if !transaction.Type.IsValid() || transaction.Amount.IsNegative() {
		return nil, apperrors.ErrInvalidInput
	}

	query := `
		INSERT INTO transactions (payer_user_id, payee_restaurant_id, reservation_id, amount, type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + transactionColumns

	created, err := scanTransaction(tx.QueryRow(ctx, query,
		transaction.PayerUserID, transaction.PayeeRestaurantID, transaction.ReservationID,
		transaction.Amount, transaction.Type,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	return created, nil
}

// FindByReservationID returns (nil, nil) when the reservation never produced a payment.
func (r *TransactionRepositoryImpl) FindByReservationID(ctx context.Context, reservationID int) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reservation_id = $1`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, reservationID))
	if errors.Is(err, errTransactionNotFound) {
		return nil, nil
	}
	return t, err
}

func (r *TransactionRepositoryImpl) ListByPayerID(ctx context.Context, payerUserID int) ([]*model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE payer_user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, payerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*model.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}
