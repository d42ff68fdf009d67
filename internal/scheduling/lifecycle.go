package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
)

// Lifecycle drives the state machine of a single lesson:
//
//	Scheduled -> Conducted | Cancelled | NoShow
//	Scheduled -> Scheduled with new date/time (reschedule, in place)
//	Cancelled -> spawns a new Make Up lesson (the original stays Cancelled)
//
// Transitions use a compare-and-swap on the current status so concurrent
// calls on the same lesson resolve to exactly one winner.
type Lifecycle struct {
	store    Store
	detector ConflictDetector
	now      func() time.Time
}

func NewLifecycle(store Store) *Lifecycle {
	return &Lifecycle{
		store:    store,
		detector: NewConflictDetector(),
		now:      time.Now,
	}
}

// WithClock overrides the wall clock used for date preconditions.
func (l *Lifecycle) WithClock(now func() time.Time) *Lifecycle {
	l.now = now
	return l
}

// Conduct marks a Scheduled lesson as held. Legal only once the lesson's date
// has arrived.
func (l *Lifecycle) Conduct(ctx context.Context, id uuid.UUID, notes string) (*models.Lesson, error) {
	lesson, err := l.store.LessonByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if NormalizeDate(lesson.ScheduledDate).After(NormalizeDate(l.now())) {
		return nil, &ValidationError{Field: "scheduled_date", Message: "cannot conduct a lesson before its scheduled date"}
	}

	updates := map[string]interface{}{
		"status":       models.LessonConducted,
		"conducted_at": l.now(),
	}
	if notes != "" {
		updates["notes"] = notes
	}
	return l.transition(ctx, id, models.LessonScheduled, models.LessonConducted, updates)
}

// Cancel cancels a Scheduled lesson; the reason is mandatory.
func (l *Lifecycle) Cancel(ctx context.Context, id uuid.UUID, reason string) (*models.Lesson, error) {
	if reason == "" {
		return nil, &ValidationError{Field: "cancellation_reason", Message: "cancellation reason is required"}
	}
	if _, err := l.store.LessonByID(ctx, id); err != nil {
		return nil, err
	}
	return l.transition(ctx, id, models.LessonScheduled, models.LessonCancelled, map[string]interface{}{
		"status":              models.LessonCancelled,
		"cancellation_reason": reason,
	})
}

// MarkNoShow records that the students did not appear. Legal only for
// Scheduled lessons whose date has passed.
func (l *Lifecycle) MarkNoShow(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	lesson, err := l.store.LessonByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !NormalizeDate(lesson.ScheduledDate).Before(NormalizeDate(l.now())) {
		return nil, &ValidationError{Field: "scheduled_date", Message: "cannot mark a no-show before the lesson date has passed"}
	}
	return l.transition(ctx, id, models.LessonScheduled, models.LessonNoShow, map[string]interface{}{
		"status": models.LessonNoShow,
	})
}

// CreateMakeup creates a new Make Up lesson replacing a cancelled one. The
// new slot is conflict-checked; the original lesson stays Cancelled.
func (l *Lifecycle) CreateMakeup(ctx context.Context, originalID uuid.UUID, date time.Time, start, end string) (*models.Lesson, error) {
	if err := validateTimes(start, end); err != nil {
		return nil, err
	}
	original, err := l.store.LessonByID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if original.Status != models.LessonCancelled {
		return nil, &InvalidStateTransitionError{LessonID: originalID, From: original.Status, To: models.LessonMakeUp}
	}

	class, err := l.store.ClassByID(ctx, original.ClassID)
	if err != nil {
		return nil, err
	}
	if err := l.checkConflicts(ctx, class, uuid.Nil, date, start, end); err != nil {
		return nil, err
	}

	origID := originalID
	makeup := &models.Lesson{
		ClassID:          original.ClassID,
		ScheduledDate:    NormalizeDate(date),
		StartTime:        start,
		EndTime:          end,
		Status:           models.LessonMakeUp,
		OriginalLessonID: &origID,
	}
	if err := l.store.CreateLesson(ctx, makeup); err != nil {
		if errors.Is(err, ErrDuplicateLesson) {
			return nil, &ConflictError{}
		}
		return nil, err
	}
	return makeup, nil
}

// Reschedule moves a Scheduled lesson to a new date/time in place. This is
// the engine's only in-place move; every other transition changes status.
func (l *Lifecycle) Reschedule(ctx context.Context, id uuid.UUID, date time.Time, start, end string) (*models.Lesson, error) {
	if err := validateTimes(start, end); err != nil {
		return nil, err
	}
	lesson, err := l.store.LessonByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lesson.Status != models.LessonScheduled {
		return nil, &InvalidStateTransitionError{LessonID: id, From: lesson.Status, To: models.LessonScheduled}
	}

	class, err := l.store.ClassByID(ctx, lesson.ClassID)
	if err != nil {
		return nil, err
	}
	if err := l.checkConflicts(ctx, class, id, date, start, end); err != nil {
		return nil, err
	}

	return l.transition(ctx, id, models.LessonScheduled, models.LessonScheduled, map[string]interface{}{
		"scheduled_date": NormalizeDate(date),
		"start_time":     start,
		"end_time":       end,
	})
}

func (l *Lifecycle) checkConflicts(ctx context.Context, class *models.Class, selfID uuid.UUID, date time.Time, start, end string) error {
	cand := Candidate{
		ClassID:       class.ID,
		LessonID:      selfID,
		ScheduledDate: NormalizeDate(date),
		StartTime:     start,
		EndTime:       end,
		TeacherID:     class.TeacherID,
		ClassroomID:   class.ClassroomID,
		StudentIDs:    activeStudentIDs(class),
	}
	existing, err := l.store.LessonsOnDate(ctx, NormalizeDate(date))
	if err != nil {
		return err
	}
	if conflicts := l.detector.Detect(cand, existing); len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

func (l *Lifecycle) transition(ctx context.Context, id uuid.UUID, from, to models.LessonStatus, updates map[string]interface{}) (*models.Lesson, error) {
	ok, err := l.store.UpdateLessonCAS(ctx, id, from, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race or called from the wrong state; report the state the
		// lesson is actually in.
		current, err := l.store.LessonByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &InvalidStateTransitionError{LessonID: id, From: current.Status, To: to}
	}
	return l.store.LessonByID(ctx, id)
}

func validateTimes(start, end string) error {
	if err := ValidateTimeOfDay("start_time", start); err != nil {
		return err
	}
	if err := ValidateTimeOfDay("end_time", end); err != nil {
		return err
	}
	if start >= end {
		return &ValidationError{Field: "start_time", Message: "start time must precede end time"}
	}
	return nil
}
