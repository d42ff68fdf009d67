package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleSlot struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClassID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"class_id"`
	DayOfWeek  string     `gorm:"type:varchar(10);not null" json:"day_of_week"`
	StartTime  string     `gorm:"type:char(5);not null" json:"start_time"`
	EndTime    string     `gorm:"type:char(5);not null" json:"end_time"`
	SemesterID *uuid.UUID `gorm:"type:uuid;index" json:"semester_id,omitempty"`
	IsObsolete bool       `gorm:"default:false" json:"is_obsolete"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Relations
	Semester *Semester `gorm:"foreignKey:SemesterID" json:"semester,omitempty"`
}

func (ScheduleSlot) TableName() string {
	return "schedule_slots"
}

func (s *ScheduleSlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
