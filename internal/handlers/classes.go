package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
	"github.com/jsobotka/tutorbase-api/internal/scheduling"
	"github.com/jsobotka/tutorbase-api/internal/services"
	"gorm.io/gorm"
)

// ListClasses returns all classes with their teacher and classroom.
func ListClasses(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var classes []models.Class
		q := db.Preload("Teacher").Preload("Classroom").Order("name asc")
		if c.Query("active") == "true" {
			q = q.Where("is_active = ?", true)
		}
		if err := q.Find(&classes).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to fetch classes",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    classes,
		})
	}
}

// GetClass returns one class with enrollments and schedule slots.
func GetClass(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		classID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "class")
			return
		}

		var class models.Class
		err = db.Preload("Teacher").Preload("Classroom").
			Preload("Enrollments", "is_active = ?", true).
			Preload("Enrollments.Student").
			Preload("ScheduleSlots", "is_obsolete = ?", false).
			First(&class, "id = ?", classID).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "NOT_FOUND",
						"message": "Class not found",
					},
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to fetch class",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    class,
		})
	}
}

// DisableClass archives a class: future scheduled lessons are deleted, slots
// marked obsolete, enrollments deactivated, all in one cascade.
func DisableClass(archiver *scheduling.Archiver, activity *services.ActivityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		classID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "class")
			return
		}

		result, err := archiver.Disable(c.Request.Context(), classID)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		_ = activity.CreateActivity(currentUserID(c), models.ActivityClassDisabled, &classID, nil, map[string]interface{}{
			"future_lessons_deleted":         result.FutureLessonsDeleted,
			"enrollments_marked_inactive":    result.EnrollmentsMarkedInactive,
			"schedule_slots_marked_obsolete": result.ScheduleSlotsMarkedObsolete,
		})

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    result,
		})
	}
}

// EnableClass reactivates a class. Nothing is regenerated: the caller must
// set up a fresh schedule and rerun generation.
func EnableClass(archiver *scheduling.Archiver, activity *services.ActivityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		classID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "class")
			return
		}

		result, err := archiver.Enable(c.Request.Context(), classID)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		_ = activity.CreateActivity(currentUserID(c), models.ActivityClassEnabled, &classID, nil, nil)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    result,
		})
	}
}
