package main

import (
	"flag"
	"log"

	"github.com/lecturemarket/lecturemarket-backend/internal/config"
	"github.com/lecturemarket/lecturemarket-backend/internal/database"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/repository"
)

func main() {
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	files, err := config.LoadDotEnv()
	if err != nil {
		log.Fatalf("Failed to load env files: %v", err)
	}
	if len(files) == 0 {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Open(&cfg.Database, *verbose)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	models := repository.Models()
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Migrated %d tables", len(models))
}
