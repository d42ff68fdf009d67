package scheduling

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
)

// ErrDuplicateLesson is returned by LessonStore.CreateLesson when the
// (class_id, scheduled_date, start_time) uniqueness constraint rejects the
// insert. Generation treats the loser of such a race as an idempotent skip.
var ErrDuplicateLesson = errors.New("scheduling: non-cancelled lesson already exists for this slot")

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = c.String()
	}
	return "scheduling conflict: " + strings.Join(parts, "; ")
}

type InvalidStateTransitionError struct {
	LessonID uuid.UUID
	From     models.LessonStatus
	To       models.LessonStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("lesson %s: illegal transition %s -> %s", e.LessonID, e.From, e.To)
}

// SchedulingWindowError means the requested window misses the academic
// calendar entirely, which usually points at missing calendar configuration.
type SchedulingWindowError struct {
	From time.Time
	To   time.Time
}

func (e *SchedulingWindowError) Error() string {
	return fmt.Sprintf("window %s..%s falls outside the academic year", FormatDate(e.From), FormatDate(e.To))
}
