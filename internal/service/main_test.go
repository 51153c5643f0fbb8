package service_test

import (
	"context"
	"log"
	"os"
	"plate-rescue/config"
	"plate-rescue/internal/metrics"
	"plate-rescue/internal/model"
	"plate-rescue/internal/queue"
	"plate-rescue/internal/repository"
	"plate-rescue/internal/service"
	"plate-rescue/internal/testutil"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	pool, cleanup, err := testutil.SetupDatabase()
	if err != nil {
		log.Printf("test database unavailable, service integration tests will be skipped: %v", err)
	} else {
		testDB = pool
		log.Println("Test database connected successfully")
	}

	code := m.Run()
	if cleanup != nil {
		cleanup()
	}
	os.Exit(code)
}

type testEngine struct {
	service      service.ReservationService
	plates       repository.PlateRepository
	reservations repository.ReservationRepository
	transactions repository.TransactionRepository
	events       queue.EventQueue
	registry     *prometheus.Registry
}

// newTestEngine resets the database and wires a reservation engine over it.
func newTestEngine(t *testing.T, opts ...service.ReservationServiceOption) *testEngine {
	t.Helper()
	testutil.ResetDatabase(t, testDB)

	cfg := config.LoadTestConfig()
	plates := repository.NewPlateRepository(testDB)
	reservations := repository.NewReservationRepository(testDB)
	transactions := repository.NewTransactionRepository(testDB)
	users := repository.NewUserRepository(testDB)
	quota := service.NewClaimQuotaTracker(testDB, users, reservations, cfg.Quota)
	events := queue.NewMemoryEventQueue(1024)
	registry := prometheus.NewRegistry()

	return &testEngine{
		service:      service.NewReservationService(testDB, plates, reservations, transactions, quota, events, metrics.NewEngineMetrics(registry), opts...),
		plates:       plates,
		reservations: reservations,
		transactions: transactions,
		events:       events,
		registry:     registry,
	}
}

func newActor(t *testing.T, name string, role model.Role) model.Actor {
	t.Helper()
	return model.Actor{UserID: testutil.CreateUser(t, testDB, name, role), Role: role}
}

func openPlate(t *testing.T, restaurant model.Actor, price string, qty int) int {
	t.Helper()
	start, end := testutil.OpenWindow()
	return testutil.CreatePlate(t, testDB, restaurant.UserID, price, qty, start, end)
}

// donate reserves and confirms qty units of plateID as donor, returning the DONATED reservation.
func (e *testEngine) donate(t *testing.T, donor model.Actor, plateID int, qty int) *model.Reservation {
	t.Helper()
	ctx := context.Background()

	held, err := e.service.Reserve(ctx, donor, model.CreateReservationRequest{PlateID: plateID, Quantity: qty})
	require.NoError(t, err)
	result, err := e.service.Confirm(ctx, donor, held.ID)
	require.NoError(t, err)
	require.Equal(t, model.ReservationStatusDonated, result.Reservation.Status)
	return result.Reservation
}
