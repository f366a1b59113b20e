package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/Desla-ai/Doeum/internal/config"
	"github.com/Desla-ai/Doeum/internal/database"
	"github.com/Desla-ai/Doeum/internal/logging"

	_ "github.com/lib/pq"
)

func main() {
	logger := logging.New("info", "text")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logging.Configure(logging.New(cfg.Log.Level, "text"))

	// Connect to database
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Connected to database successfully")

	applied, err := database.Apply(ctx, db)
	if err != nil {
		logger.Fatalf("Failed to apply migrations: %v", err)
	}

	if len(applied) == 0 {
		logger.Info("Schema is up to date")
		return
	}
	logger.Infof("Applied %d migration(s): %v", len(applied), applied)
}
