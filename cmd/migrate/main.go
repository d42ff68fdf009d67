package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/jsobotka/tutorbase-api/internal/config"
	"github.com/jsobotka/tutorbase-api/internal/database"
)

func main() {
	demo := flag.Bool("demo", false, "seed a demo academic calendar")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default admin
	if err := database.SeedAdmin(db); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	if *demo {
		if err := database.SeedDemoCalendar(db); err != nil {
			log.Fatalf("Failed to seed demo calendar: %v", err)
		}
	}

	log.Println("Migration completed")
}
