package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"plate-rescue/config"
	"plate-rescue/internal/cache"
	"plate-rescue/internal/database"
	"plate-rescue/internal/handler"
	"plate-rescue/internal/metrics"
	"plate-rescue/internal/migrate"
	"plate-rescue/internal/queue"
	"plate-rescue/internal/repository"
	"plate-rescue/internal/service"
	"plate-rescue/internal/worker"
	"plate-rescue/pkg/logger"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.LoadConfig()
	defer logger.Sync()
	log := logger.WithComponent("server")

	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	if err := migrate.Up(ctx, pool); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	defer rdb.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngineMetrics(registry)

	eventQueue, err := newEventQueue(ctx, cfg.Queue, rdb)
	if err != nil {
		log.Fatal("Failed to initialize event queue", zap.Error(err))
	}

	userRepository := repository.NewUserRepository(pool)
	plateRepository := repository.NewPlateRepository(pool)
	reservationRepository := repository.NewReservationRepository(pool)
	transactionRepository := repository.NewTransactionRepository(pool)

	plateService := service.NewPlateService(plateRepository, cache.NewPlateAvailabilityCache(rdb))
	quota := service.NewClaimQuotaTracker(pool, userRepository, reservationRepository, cfg.Quota)
	reservationService := service.NewReservationService(
		pool,
		plateRepository,
		reservationRepository,
		transactionRepository,
		quota,
		eventQueue,
		engineMetrics,
	)

	if n, err := plateService.WarmUp(ctx); err != nil {
		// the marketplace falls back to the database until events refill the cache
		log.Warn("Failed to warm availability cache", zap.Error(err))
	} else {
		log.Info("Availability cache warmed", zap.Int("plates", n))
	}

	router := handler.NewRouter(
		cfg.Auth.JWTSecret,
		registry,
		handler.NewPlateHandler(plateService),
		handler.NewReservationHandler(reservationService),
		handler.NewClaimHandler(reservationService),
	)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	availabilityWorker := worker.NewAvailabilityWorker(plateService, eventQueue, engineMetrics)
	if err := availabilityWorker.Start(gctx); err != nil {
		log.Fatal("Failed to start availability worker", zap.Error(err))
	}
	g.Go(func() error {
		<-availabilityWorker.Done()
		return nil
	})

	g.Go(func() error {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return
	}
	log.Info("Server stopped")
}

func newEventQueue(ctx context.Context, cfg config.QueueConfig, rdb *redis.Client) (queue.EventQueue, error) {
	switch cfg.Backend {
	case "memory":
		return queue.NewMemoryEventQueue(1024), nil
	case "redis":
		return queue.NewRedisStreamEventQueue(ctx, rdb, cfg.ConsumerID, &queue.RedisStreamConfig{
			ClaimMinIdleTime: cfg.ClaimMinIdleTime,
			MaxRetryCount:    cfg.MaxRetryCount,
		})
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.Backend)
	}
}
