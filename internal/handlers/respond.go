package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/scheduling"
)

// respondEngineError maps the scheduling error taxonomy onto the API error
// envelope with stable codes.
func respondEngineError(c *gin.Context, err error) {
	var (
		validationErr *scheduling.ValidationError
		notFoundErr   *scheduling.NotFoundError
		conflictErr   *scheduling.ConflictError
		stateErr      *scheduling.InvalidStateTransitionError
		windowErr     *scheduling.SchedulingWindowError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": validationErr.Error(),
			},
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": notFoundErr.Error(),
			},
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":      "SCHEDULE_CONFLICT",
				"message":   conflictErr.Error(),
				"conflicts": conflictErr.Conflicts,
			},
		})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATE_TRANSITION",
				"message": stateErr.Error(),
			},
		})
	case errors.As(err, &windowErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SCHEDULING_WINDOW",
				"message": windowErr.Error(),
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Operation failed",
			},
		})
	}
}

func respondInvalidID(c *gin.Context, what string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INVALID_ID",
			"message": "Invalid " + what + " ID format",
		},
	})
}

func respondValidation(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": message,
		},
	})
}

// currentUserID extracts the authenticated user id set by the auth
// middleware; uuid.Nil when absent or malformed.
func currentUserID(c *gin.Context) uuid.UUID {
	raw, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
