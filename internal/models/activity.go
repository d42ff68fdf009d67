package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityLessonsGenerated  ActivityType = "lessons_generated"
	ActivityLessonConducted   ActivityType = "lesson_conducted"
	ActivityLessonCancelled   ActivityType = "lesson_cancelled"
	ActivityLessonNoShow      ActivityType = "lesson_no_show"
	ActivityMakeupCreated     ActivityType = "makeup_created"
	ActivityLessonRescheduled ActivityType = "lesson_rescheduled"
	ActivityClassDisabled     ActivityType = "class_disabled"
	ActivityClassEnabled      ActivityType = "class_enabled"
	ActivitySlotReplaced      ActivityType = "slot_replaced"
)

type Activity struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	ActivityType ActivityType `gorm:"type:varchar(50);not null;index" json:"activity_type"`
	ClassID      *uuid.UUID   `gorm:"type:uuid;index" json:"class_id,omitempty"`
	LessonID     *uuid.UUID   `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
	Metadata     string       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time    `gorm:"index" json:"created_at"`

	// Relations
	User   User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Class  *Class  `gorm:"foreignKey:ClassID" json:"class,omitempty"`
	Lesson *Lesson `gorm:"foreignKey:LessonID" json:"lesson,omitempty"`
}

func (Activity) TableName() string {
	return "activities"
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}
