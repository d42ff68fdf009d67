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

// Request/Response types
type GenerateLessonsRequest struct {
	SemesterID    *uuid.UUID `json:"semester_id"`
	From          string     `json:"from" binding:"required"`
	To            string     `json:"to" binding:"required"`
	SkipConflicts *bool      `json:"skip_conflicts"`
}

type CancelLessonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ConductLessonRequest struct {
	Notes string `json:"notes"`
}

type MakeupLessonRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type RescheduleLessonRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// GenerateLessons expands the class's active schedule slots over the
// requested window into concrete lessons and returns the generation report.
func GenerateLessons(store scheduling.Store, generator *scheduling.Generator, activity *services.ActivityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		classID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "class")
			return
		}

		var req GenerateLessonsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, err.Error())
			return
		}

		from, err := scheduling.ParseDate("from", req.From)
		if err != nil {
			respondEngineError(c, err)
			return
		}
		to, err := scheduling.ParseDate("to", req.To)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		slots, err := store.SlotsByClass(c.Request.Context(), classID, false)
		if err != nil {
			respondEngineError(c, err)
			return
		}
		// An explicit semester narrows generation to slots bound to it plus
		// the global ones.
		if req.SemesterID != nil {
			filtered := slots[:0]
			for _, s := range slots {
				if s.SemesterID == nil || *s.SemesterID == *req.SemesterID {
					filtered = append(filtered, s)
				}
			}
			slots = filtered
		}

		policy := scheduling.DefaultPolicy()
		if req.SkipConflicts != nil {
			policy.SkipConflicts = *req.SkipConflicts
		}

		report, err := generator.Generate(c.Request.Context(), classID, slots, scheduling.NewWindow(from, to), policy)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		_ = activity.CreateActivity(currentUserID(c), models.ActivityLessonsGenerated, &classID, nil, map[string]interface{}{
			"generated_count":         report.GeneratedCount,
			"skipped_conflict_count":  report.SkippedConflictCount,
			"skipped_past_date_count": report.SkippedPastDateCount,
			"from":                    req.From,
			"to":                      req.To,
		})

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    report,
		})
	}
}

// ListLessons returns the class's lessons inside an optional date window.
func ListLessons(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		classID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "class")
			return
		}

		q := db.Where("class_id = ?", classID)
		if fromStr := c.Query("from"); fromStr != "" {
			from, err := scheduling.ParseDate("from", fromStr)
			if err != nil {
				respondEngineError(c, err)
				return
			}
			q = q.Where("scheduled_date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := scheduling.ParseDate("to", toStr)
			if err != nil {
				respondEngineError(c, err)
				return
			}
			q = q.Where("scheduled_date <= ?", to)
		}

		var lessons []models.Lesson
		if err := q.Order("scheduled_date asc, start_time asc").Find(&lessons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to fetch lessons",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    lessons,
		})
	}
}

// ConductLesson marks a lesson as held.
func ConductLesson(lifecycle *scheduling.Lifecycle, activity *services.ActivityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lessonID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "lesson")
			return
		}

		var req ConductLessonRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			respondValidation(c, err.Error())
			return
		}

		lesson, err := lifecycle.Conduct(c.Request.Context(), lessonID, req.Notes)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		_ = activity.CreateActivity(currentUserID(c), models.ActivityLessonConducted, &lesson.ClassID, &lesson.ID, nil)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    lesson,
		})
	}
}

// CancelLesson cancels a scheduled lesson, freeing its slot.
func CancelLesson(lifecycle *scheduling.Lifecycle, activity *services.ActivityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lessonID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "lesson")
			return
		}

		var req CancelLessonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, err.Error())
			return
		}

		lesson, err := lifecycle.Cancel(c.Request.Context(), lessonID, req.Reason)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		_ = activity.CreateActivity(currentUserID(c), models.ActivityLessonCancelled, &lesson.ClassID, &lesson.ID, map[string]interface{}{
			"reason": req.Reason,
		})

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    lesson,
		})
	}
}

// MarkLessonNoShow records that nobody showed up for a past lesson.
func MarkLessonNoShow(lifecycle *scheduling.Lifecycle, activity *services.ActivityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lessonID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "lesson")
			return
		}

		lesson, err := lifecycle.MarkNoShow(c.Request.Context(), lessonID)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		_ = activity.CreateActivity(currentUserID(c), models.ActivityLessonNoShow, &lesson.ClassID, &lesson.ID, nil)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    lesson,
		})
	}
}

// CreateMakeupLesson spawns a replacement lesson for a cancelled one.
func CreateMakeupLesson(lifecycle *scheduling.Lifecycle, activity *services.ActivityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		originalID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "lesson")
			return
		}

		var req MakeupLessonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, err.Error())
			return
		}

		date, err := scheduling.ParseDate("date", req.Date)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		makeup, err := lifecycle.CreateMakeup(c.Request.Context(), originalID, date, req.StartTime, req.EndTime)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		_ = activity.CreateActivity(currentUserID(c), models.ActivityMakeupCreated, &makeup.ClassID, &makeup.ID, map[string]interface{}{
			"original_lesson_id": originalID,
		})

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"data":    makeup,
		})
	}
}

// RescheduleLesson moves a scheduled lesson to a new date/time in place.
func RescheduleLesson(lifecycle *scheduling.Lifecycle, activity *services.ActivityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lessonID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "lesson")
			return
		}

		var req RescheduleLessonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, err.Error())
			return
		}

		date, err := scheduling.ParseDate("date", req.Date)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		lesson, err := lifecycle.Reschedule(c.Request.Context(), lessonID, date, req.StartTime, req.EndTime)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		_ = activity.CreateActivity(currentUserID(c), models.ActivityLessonRescheduled, &lesson.ClassID, &lesson.ID, map[string]interface{}{
			"new_date": req.Date,
		})

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    lesson,
		})
	}
}
