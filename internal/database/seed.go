package database

import (
	"log"
	"os"
	"time"

	"github.com/jsobotka/tutorbase-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates a default admin account if no admin exists in the database
func SeedAdmin(db *gorm.DB) error {
	// Check if any admin user exists
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	// Get admin credentials from environment or use defaults
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@tutorbase.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "AdminPassword123!"
	}

	adminName := os.Getenv("ADMIN_NAME")
	if adminName == "" {
		adminName = "System Administrator"
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// Create admin user
	admin := models.User{
		Email:        adminEmail,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
		DisplayName:  adminName,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Created default admin user: %s", adminEmail)
	return nil
}

// SeedDemoCalendar creates a demo academic year with two semesters and a
// winter break, if no academic year exists yet. Intended for local
// development only.
func SeedDemoCalendar(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.AcademicYear{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Academic year already exists, skipping demo calendar seed")
		return nil
	}

	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	year := models.AcademicYear{
		Name:      "2025/2026",
		StartDate: date(2025, time.September, 1),
		EndDate:   date(2026, time.June, 30),
		IsActive:  true,
	}
	if err := db.Create(&year).Error; err != nil {
		return err
	}

	semesters := []models.Semester{
		{AcademicYearID: year.ID, SemesterNumber: 1, StartDate: date(2025, time.September, 1), EndDate: date(2025, time.December, 21)},
		{AcademicYearID: year.ID, SemesterNumber: 2, StartDate: date(2026, time.January, 6), EndDate: date(2026, time.June, 30)},
	}
	if err := db.Create(&semesters).Error; err != nil {
		return err
	}

	winterBreak := models.TeachingBreak{
		AcademicYearID: year.ID,
		Name:           "Winter break",
		StartDate:      date(2025, time.December, 22),
		EndDate:        date(2026, time.January, 5),
		BreakType:      models.BreakVacation,
	}
	if err := db.Create(&winterBreak).Error; err != nil {
		return err
	}

	log.Printf("Created demo academic year: %s", year.Name)
	return nil
}
