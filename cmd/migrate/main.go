package main

import (
	"flag"
	"log"

	"wikiquiz/internal/config"
	"wikiquiz/internal/database"
)

func main() {
	migrationsPath := flag.String("path", "database/migrations", "path to migration files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := database.RunMigrations(cfg.GetDSN(), *migrationsPath); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully")
}
