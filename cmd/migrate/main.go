package main

import (
	"log"

	"marriage-bot/internal/config"
	"marriage-bot/internal/database"
)

// Standalone migration runner for deployments where the bot process has no
// DDL rights and the schema is applied ahead of a rollout.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations applied successfully")
}
