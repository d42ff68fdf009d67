package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
	"github.com/jsobotka/tutorbase-api/internal/scheduling"
	"github.com/jsobotka/tutorbase-api/internal/services"
)

// Request/Response types
type ScheduleSlotDto struct {
	ID                *uuid.UUID `json:"id,omitempty"`
	DayOfWeek         string     `json:"day_of_week"`
	StartTime         string     `json:"start_time"`
	EndTime           string     `json:"end_time"`
	SemesterID        *uuid.UUID `json:"semester_id,omitempty"`
	IsGlobal          bool       `json:"is_global"`
	IsObsolete        bool       `json:"is_obsolete"`
	PastLessonCount   *int64     `json:"past_lesson_count,omitempty"`
	FutureLessonCount *int64     `json:"future_lesson_count,omitempty"`
}

type CreateSlotRequest struct {
	DayOfWeek  string     `json:"day_of_week" binding:"required"`
	StartTime  string     `json:"start_time" binding:"required"`
	EndTime    string     `json:"end_time" binding:"required"`
	SemesterID *uuid.UUID `json:"semester_id"`
}

func slotDto(slot models.ScheduleSlot, past, future *int64) ScheduleSlotDto {
	id := slot.ID
	return ScheduleSlotDto{
		ID:                &id,
		DayOfWeek:         slot.DayOfWeek,
		StartTime:         slot.StartTime,
		EndTime:           slot.EndTime,
		SemesterID:        slot.SemesterID,
		IsGlobal:          slot.SemesterID == nil,
		IsObsolete:        slot.IsObsolete,
		PastLessonCount:   past,
		FutureLessonCount: future,
	}
}

// ListClassSlots returns the schedule slots of a class with their historic
// and pending lesson counts.
func ListClassSlots(store scheduling.Store, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		classID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "class")
			return
		}
		if _, err := store.ClassByID(c.Request.Context(), classID); err != nil {
			respondEngineError(c, err)
			return
		}

		includeObsolete := c.Query("include_obsolete") == "true"
		slots, err := store.SlotsByClass(c.Request.Context(), classID, includeObsolete)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		today := scheduling.NormalizeDate(now())
		dtos := make([]ScheduleSlotDto, 0, len(slots))
		for _, slot := range slots {
			past, future, err := store.LessonCountsForSlot(c.Request.Context(), slot.ID, today)
			if err != nil {
				respondEngineError(c, err)
				return
			}
			dtos = append(dtos, slotDto(slot, &past, &future))
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    dtos,
		})
	}
}

// CreateClassSlot adds a weekly recurring slot to a class. Overlapping slots
// are rejected unless they target different semesters.
func CreateClassSlot(store scheduling.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		classID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "class")
			return
		}

		var req CreateSlotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, err.Error())
			return
		}

		slot := models.ScheduleSlot{
			ClassID:    classID,
			DayOfWeek:  req.DayOfWeek,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			SemesterID: req.SemesterID,
		}
		if err := validateNewSlot(c, store, slot); err != nil {
			respondEngineError(c, err)
			return
		}

		if err := store.CreateSlot(c.Request.Context(), &slot); err != nil {
			respondEngineError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"data":    slotDto(slot, nil, nil),
		})
	}
}

// ReplaceSlot retires a slot and creates its replacement in one transaction.
// Future lessons generated from the old slot are deleted; the response tells
// the caller how many.
func ReplaceSlot(store scheduling.Store, activity *services.ActivityService, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		slotID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "slot")
			return
		}

		var req CreateSlotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, err.Error())
			return
		}

		old, err := store.SlotByID(c.Request.Context(), slotID)
		if err != nil {
			respondEngineError(c, err)
			return
		}
		if old.IsObsolete {
			respondValidation(c, "slot is already obsolete")
			return
		}

		replacement := models.ScheduleSlot{
			ClassID:    old.ClassID,
			DayOfWeek:  req.DayOfWeek,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			SemesterID: req.SemesterID,
		}
		if err := validateSlotShape(replacement); err != nil {
			respondEngineError(c, err)
			return
		}

		today := scheduling.NormalizeDate(now())
		var deleted int64
		err = store.Atomic(c.Request.Context(), func(s scheduling.Store) error {
			if err := s.MarkSlotObsolete(c.Request.Context(), slotID); err != nil {
				return err
			}
			n, err := s.DeleteFutureScheduledBySlot(c.Request.Context(), slotID, today)
			if err != nil {
				return err
			}
			deleted = n
			return s.CreateSlot(c.Request.Context(), &replacement)
		})
		if err != nil {
			respondEngineError(c, err)
			return
		}

		_ = activity.CreateActivity(currentUserID(c), models.ActivitySlotReplaced, &old.ClassID, nil, map[string]interface{}{
			"old_slot_id":            slotID,
			"new_slot_id":            replacement.ID,
			"future_lessons_deleted": deleted,
		})

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"replaced_slot":          slotDto(*old, nil, nil),
				"new_slot":               slotDto(replacement, nil, nil),
				"future_lessons_deleted": deleted,
			},
		})
	}
}

// ObsoleteSlot retires a slot without replacement. Slots are never
// hard-deleted so past lesson counts stay attributable.
func ObsoleteSlot(store scheduling.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		slotID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "slot")
			return
		}

		if err := store.MarkSlotObsolete(c.Request.Context(), slotID); err != nil {
			respondEngineError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Slot marked obsolete",
		})
	}
}

func validateSlotShape(slot models.ScheduleSlot) error {
	if _, err := scheduling.ParseDayOfWeek(slot.DayOfWeek); err != nil {
		return err
	}
	if err := scheduling.ValidateTimeOfDay("start_time", slot.StartTime); err != nil {
		return err
	}
	if err := scheduling.ValidateTimeOfDay("end_time", slot.EndTime); err != nil {
		return err
	}
	if slot.StartTime >= slot.EndTime {
		return &scheduling.ValidationError{Field: "start_time", Message: "start time must precede end time"}
	}
	return nil
}

// validateNewSlot checks shape plus the overlap rule: two slots of one class
// may overlap only when bound to different semesters.
func validateNewSlot(c *gin.Context, store scheduling.Store, slot models.ScheduleSlot) error {
	if err := validateSlotShape(slot); err != nil {
		return err
	}
	if _, err := store.ClassByID(c.Request.Context(), slot.ClassID); err != nil {
		return err
	}
	if slot.SemesterID != nil {
		if _, err := store.SemesterByID(c.Request.Context(), *slot.SemesterID); err != nil {
			return err
		}
	}

	existing, err := store.SlotsByClass(c.Request.Context(), slot.ClassID, false)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.DayOfWeek != slot.DayOfWeek {
			continue
		}
		if slot.StartTime >= other.EndTime || other.StartTime >= slot.EndTime {
			continue
		}
		differentSemesters := slot.SemesterID != nil && other.SemesterID != nil && *slot.SemesterID != *other.SemesterID
		if !differentSemesters {
			return &scheduling.ValidationError{
				Field:   "start_time",
				Message: "slot overlaps an existing slot for the same semester scope",
			}
		}
	}
	return nil
}
