package database

import (
	"fmt"
	"log"

	"github.com/jsobotka/tutorbase-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Database connected successfully")
	return db, nil
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.AcademicYear{},
		&models.Semester{},
		&models.TeachingBreak{},
		&models.Teacher{},
		&models.Classroom{},
		&models.Student{},
		&models.Class{},
		&models.Enrollment{},
		&models.ScheduleSlot{},
		&models.Lesson{},
		&models.Activity{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	// A slot (class, date, start) may repeat only when the earlier lesson was
	// cancelled. This index is the final arbiter for concurrent generation.
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_lessons_slot_occupancy
			ON lessons (class_id, scheduled_date, start_time)
			WHERE status <> 'Cancelled'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_academic_years_one_active
			ON academic_years (is_active)
			WHERE is_active`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_semesters_number_per_year
			ON semesters (academic_year_id, semester_number)`,
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("index creation failed: %w", err)
		}
	}

	log.Println("Migrations completed")
	return nil
}
