package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"log"
	"os"

	"jobhunt-backend/internal/shared/config"
	"jobhunt-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.MigrateOptions())
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
	version, err := db.MigrationVersion(ctx, sqlDB)
	if err != nil {
		log.Printf("failed to read migration version: %v", err)
		os.Exit(1)
	}
	log.Printf("database at migration version %d", version)
}
