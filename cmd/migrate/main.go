package main

import (
	"fmt"
	"log"
	"os"

	"github.com/shaygp/boxd/internal/config"
	"github.com/shaygp/boxd/internal/database"
	"github.com/shaygp/boxd/internal/logger"
	"go.uber.org/zap"
)

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		runMigrationsUp()
	default:
		fmt.Println("Usage: migrate [up]")
		fmt.Println("  up - Create or update every table and index")
		os.Exit(1)
	}
}

func runMigrationsUp() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	logger.Log.Info("Running migrations...")
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}
	logger.Log.Info("All migrations completed")
}
