package services

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
	"gorm.io/gorm"
)

// ActivityService records an audit trail of scheduling operations:
// generation runs, lifecycle transitions and class disable/enable cascades.
type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{
		db: db,
	}
}

func (s *ActivityService) CreateActivity(userID uuid.UUID, activityType models.ActivityType, classID, lessonID *uuid.UUID, metadata map[string]interface{}) error {
	metadataJSON := "{}"
	if len(metadata) > 0 {
		bytes, err := json.Marshal(metadata)
		if err == nil {
			metadataJSON = string(bytes)
		}
	}

	activity := models.Activity{
		UserID:       userID,
		ActivityType: activityType,
		ClassID:      classID,
		LessonID:     lessonID,
		Metadata:     metadataJSON,
	}

	return s.db.Create(&activity).Error
}

func (s *ActivityService) GetRecentActivities(limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := s.db.Preload("User").Preload("Class").Preload("Lesson").
		Order("created_at desc").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
