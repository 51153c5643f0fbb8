package testutil

import (
	"context"
	"fmt"
	"plate-rescue/config"
	"plate-rescue/internal/database"
	"plate-rescue/internal/migrate"
	"plate-rescue/internal/model"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// test packages run as separate processes against one database; they
// serialize on this advisory lock
const advisoryLockKey = 727274

// SetupDatabase connects to the test database and applies migrations.
func SetupDatabase() (*pgxpool.Pool, func(), error) {
	cfg := config.LoadTestConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize test database: %w", err)
	}

	ctx := context.Background()
	unlock, err := lockDatabase(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	defer unlock()

	if err := migrate.Up(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return pool, pool.Close, nil
}

func lockDatabase(ctx context.Context, pool *pgxpool.Pool) (func(), error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockKey); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to take advisory lock: %w", err)
	}
	return func() {
		_, _ = conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", advisoryLockKey)
		conn.Release()
	}, nil
}

// SetupRedisOnly initializes Redis only, for tests that do not touch Postgres.
func SetupRedisOnly() (*redis.Client, func(), error) {
	cfg := config.LoadTestConfig()
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	cleanup := func() { rdb.Close() }
	return rdb, cleanup, nil
}

// RequireDB skips t when the package could not reach Postgres.
func RequireDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if pool == nil {
		t.Skip("test database unavailable")
	}
}

// RequireRedis skips t when the package could not reach Redis.
func RequireRedis(t *testing.T, rdb *redis.Client) {
	t.Helper()
	if rdb == nil {
		t.Skip("test redis unavailable")
	}
}

// ResetDatabase skips t without a database, otherwise holds the test lock
// until t ends and empties every table.
func ResetDatabase(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	RequireDB(t, pool)

	unlock, err := lockDatabase(context.Background(), pool)
	if err != nil {
		t.Fatalf("%v", err)
	}
	t.Cleanup(unlock)

	_, err = pool.Exec(context.Background(),
		"TRUNCATE transactions, reservations, plates, users RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

func CreateUser(t *testing.T, pool *pgxpool.Pool, name string, role model.Role) int {
	t.Helper()

	query := `
		INSERT INTO users (name, email, role)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int
	email := fmt.Sprintf("%s-%d@test.local", name, time.Now().UnixNano())
	if err := pool.QueryRow(context.Background(), query, name, email, role).Scan(&id); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return id
}

// CreatePlate inserts an active plate whose window is [start, end).
func CreatePlate(t *testing.T, pool *pgxpool.Pool, restaurantID int, price string, qty int, start, end time.Time) int {
	t.Helper()

	query := `
		INSERT INTO plates (
			restaurant_id, title, description, price,
			quantity_available, quantity_original, window_start, window_end, is_active)
		VALUES ($1, $2, '', $3, $4, $4, $5, $6, TRUE)
		RETURNING id
	`

	var id int
	err := pool.QueryRow(context.Background(), query,
		restaurantID, "Test plate", decimal.RequireFromString(price), qty, start.UTC(), end.UTC(),
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test plate: %v", err)
	}
	return id
}

// OpenWindow returns a window that contains now.
func OpenWindow() (time.Time, time.Time) {
	now := time.Now().UTC()
	return now.Add(-time.Hour), now.Add(2 * time.Hour)
}
