package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonStatus string

// Status literals are exposed as-is at the API boundary.
const (
	LessonScheduled LessonStatus = "Scheduled"
	LessonConducted LessonStatus = "Conducted"
	LessonCancelled LessonStatus = "Cancelled"
	LessonMakeUp    LessonStatus = "Make Up"
	LessonNoShow    LessonStatus = "No Show"
)

type Lesson struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClassID            uuid.UUID    `gorm:"type:uuid;not null;index" json:"class_id"`
	ScheduledDate      time.Time    `gorm:"type:date;not null;index" json:"scheduled_date"`
	StartTime          string       `gorm:"type:char(5);not null" json:"start_time"`
	EndTime            string       `gorm:"type:char(5);not null" json:"end_time"`
	Status             LessonStatus `gorm:"type:varchar(20);not null;default:'Scheduled'" json:"status"`
	SourceSlotID       *uuid.UUID   `gorm:"type:uuid;index" json:"source_slot_id,omitempty"`
	OriginalLessonID   *uuid.UUID   `gorm:"type:uuid" json:"original_lesson_id,omitempty"`
	CancellationReason *string      `gorm:"size:500" json:"cancellation_reason,omitempty"`
	ConductedAt        *time.Time   `json:"conducted_at,omitempty"`
	Notes              string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

func (Lesson) TableName() string {
	return "lessons"
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
