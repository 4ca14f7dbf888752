package main

// Apply or inspect database migrations:
//   go run ./cmd/migrate            # up
//   go run ./cmd/migrate -cmd status

import (
	"context"
	"flag"
	"log"

	"lbs-connect/internal/shared/config"
	"lbs-connect/internal/shared/storage/db"
)

func main() {
	command := flag.String("cmd", "up", "goose command: up, down, status, version or reset")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFor(db.ProfileMigrate))
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, *command); err != nil {
		log.Fatalf("migrate %s: %v", *command, err)
	}
	log.Printf("migrate %s done", *command)
}
