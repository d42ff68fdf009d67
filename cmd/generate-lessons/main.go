package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/jsobotka/tutorbase-api/internal/config"
	"github.com/jsobotka/tutorbase-api/internal/database"
	"github.com/jsobotka/tutorbase-api/internal/models"
	"github.com/jsobotka/tutorbase-api/internal/scheduling"
)

// Batch regeneration tool: expands the schedule of every active class over a
// date window. Intended for cron or for backfilling after calendar changes.
func main() {
	fromFlag := flag.String("from", "", "window start (yyyy-MM-dd, default today)")
	toFlag := flag.String("to", "", "window end (yyyy-MM-dd, default end of the class's academic year)")
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

	locker, err := database.NewClassLocker(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize class locker: %v", err)
	}

	store := database.NewStore(db)
	generator := scheduling.NewGenerator(store, locker)
	ctx := context.Background()

	from := scheduling.NormalizeDate(time.Now())
	if *fromFlag != "" {
		from, err = scheduling.ParseDate("from", *fromFlag)
		if err != nil {
			log.Fatalf("Invalid -from: %v", err)
		}
	}

	var classes []models.Class
	if err := db.Where("is_active = ?", true).Find(&classes).Error; err != nil {
		log.Fatalf("Failed to fetch classes: %v", err)
	}
	log.Printf("Generating lessons for %d active classes", len(classes))

	var generated, skippedConflicts int
	for _, class := range classes {
		to := time.Time{}
		if *toFlag != "" {
			to, err = scheduling.ParseDate("to", *toFlag)
			if err != nil {
				log.Fatalf("Invalid -to: %v", err)
			}
		} else {
			year, err := store.AcademicYearByID(ctx, class.AcademicYearID)
			if err != nil {
				log.Printf("Skipping class %s: %v", class.Name, err)
				continue
			}
			to = year.EndDate
		}

		slots, err := store.SlotsByClass(ctx, class.ID, false)
		if err != nil {
			log.Printf("Skipping class %s: %v", class.Name, err)
			continue
		}
		if len(slots) == 0 {
			continue
		}

		report, err := generator.Generate(ctx, class.ID, slots, scheduling.NewWindow(from, to), scheduling.DefaultPolicy())
		if err != nil {
			log.Printf("Generation failed for class %s: %v", class.Name, err)
			continue
		}

		generated += report.GeneratedCount
		skippedConflicts += report.SkippedConflictCount
		log.Printf("Class %s: %d generated, %d skipped (conflicts), %d skipped (past dates)",
			class.Name, report.GeneratedCount, report.SkippedConflictCount, report.SkippedPastDateCount)
		for _, w := range report.Warnings {
			log.Printf("  warning: %s", w)
		}
	}

	log.Printf("Done: %d lessons generated, %d dates skipped due to conflicts", generated, skippedConflicts)
}
