package main

import (
	"context"
	"flag"
	"os"
	"plate-rescue/config"
	"plate-rescue/internal/database"
	"plate-rescue/internal/migrate"
	"plate-rescue/pkg/logger"

	"go.uber.org/zap"
)

// Usage: migrate -cmd up | down | status | version | redo | reset
func main() {
	command := flag.String("cmd", "up", "goose command to run")
	flag.Parse()

	cfg := config.LoadConfig()
	defer logger.Sync()
	log := logger.WithComponent("migrate")

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	if err := migrate.Run(context.Background(), pool, *command, flag.Args()...); err != nil {
		log.Error("Migration failed", zap.String("cmd", *command), zap.Error(err))
		pool.Close()
		os.Exit(1)
	}
}
