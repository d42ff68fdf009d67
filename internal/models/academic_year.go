package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BreakType string

const (
	BreakHoliday    BreakType = "holiday"
	BreakVacation   BreakType = "vacation"
	BreakExamPeriod BreakType = "exam_period"
)

type AcademicYear struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`
	IsActive  bool      `gorm:"default:false" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Semesters      []Semester      `gorm:"foreignKey:AcademicYearID" json:"semesters,omitempty"`
	TeachingBreaks []TeachingBreak `gorm:"foreignKey:AcademicYearID" json:"teaching_breaks,omitempty"`
}

func (AcademicYear) TableName() string {
	return "academic_years"
}

func (y *AcademicYear) BeforeCreate(tx *gorm.DB) error {
	if y.ID == uuid.Nil {
		y.ID = uuid.New()
	}
	return nil
}

type Semester struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AcademicYearID uuid.UUID `gorm:"type:uuid;not null;index" json:"academic_year_id"`
	SemesterNumber int       `gorm:"not null" json:"semester_number"`
	StartDate      time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate        time.Time `gorm:"type:date;not null" json:"end_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Semester) TableName() string {
	return "semesters"
}

func (s *Semester) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type TeachingBreak struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AcademicYearID uuid.UUID `gorm:"type:uuid;not null;index" json:"academic_year_id"`
	Name           string    `gorm:"size:200;not null" json:"name"`
	StartDate      time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate        time.Time `gorm:"type:date;not null" json:"end_date"`
	BreakType      BreakType `gorm:"type:varchar(20);not null" json:"break_type"`
	CreatedAt      time.Time `json:"created_at"`
}

func (TeachingBreak) TableName() string {
	return "teaching_breaks"
}

func (b *TeachingBreak) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
