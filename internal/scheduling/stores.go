package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
)

// Store abstracts persistence so the engine can be exercised without a
// database. The gorm implementation lives in internal/database.
type Store interface {
	CalendarStore
	ClassStore
	SlotStore
	LessonStore
	EnrollmentStore

	// Atomic runs fn inside one transactional boundary; every store call made
	// through the passed Store commits or rolls back as a unit.
	Atomic(ctx context.Context, fn func(Store) error) error
}

type CalendarStore interface {
	AcademicYearByID(ctx context.Context, id uuid.UUID) (*models.AcademicYear, error)
	SemesterByID(ctx context.Context, id uuid.UUID) (*models.Semester, error)
	SemestersByYear(ctx context.Context, yearID uuid.UUID) ([]models.Semester, error)
	TeachingBreaksByYear(ctx context.Context, yearID uuid.UUID) ([]models.TeachingBreak, error)
}

type ClassStore interface {
	// ClassByID loads a class with its active enrollments.
	ClassByID(ctx context.Context, id uuid.UUID) (*models.Class, error)
	SetClassActive(ctx context.Context, id uuid.UUID, active bool, disabledAt *time.Time) error
}

type SlotStore interface {
	SlotByID(ctx context.Context, id uuid.UUID) (*models.ScheduleSlot, error)
	SlotsByClass(ctx context.Context, classID uuid.UUID, includeObsolete bool) ([]models.ScheduleSlot, error)
	CreateSlot(ctx context.Context, slot *models.ScheduleSlot) error
	MarkSlotObsolete(ctx context.Context, id uuid.UUID) error
	MarkAllSlotsObsolete(ctx context.Context, classID uuid.UUID) (int64, error)
	// LessonCountsForSlot counts lessons generated from a slot, split on today.
	LessonCountsForSlot(ctx context.Context, slotID uuid.UUID, today time.Time) (past, future int64, err error)
}

type LessonStore interface {
	LessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	// LessonsOnDate returns every lesson on the given date system-wide, each
	// with its occupied resources resolved.
	LessonsOnDate(ctx context.Context, date time.Time) ([]LessonResources, error)
	LessonsByClassBetween(ctx context.Context, classID uuid.UUID, from, to time.Time) ([]models.Lesson, error)
	// ExistsNonCancelled reports whether a non-cancelled lesson already
	// occupies (classID, date, start).
	ExistsNonCancelled(ctx context.Context, classID uuid.UUID, date time.Time, start string) (bool, error)
	// CreateLesson persists a lesson; returns ErrDuplicateLesson when the
	// per-slot uniqueness constraint rejects it.
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	// UpdateLessonCAS applies updates only while the lesson is still in the
	// `from` status. Returns false when the guard failed (lesson missing or
	// already transitioned).
	UpdateLessonCAS(ctx context.Context, id uuid.UUID, from models.LessonStatus, updates map[string]interface{}) (bool, error)
	// DeleteFutureScheduled hard-deletes Scheduled lessons with
	// scheduled_date strictly after the given day.
	DeleteFutureScheduled(ctx context.Context, classID uuid.UUID, after time.Time) (int64, error)
	// DeleteFutureScheduledBySlot does the same but only for lessons
	// generated from one slot (used when a slot is replaced).
	DeleteFutureScheduledBySlot(ctx context.Context, slotID uuid.UUID, after time.Time) (int64, error)
}

type EnrollmentStore interface {
	DeactivateByClass(ctx context.Context, classID uuid.UUID) (int64, error)
}

// Locker serializes generation and disable per class (advisory lock).
type Locker interface {
	AcquireClassLock(ctx context.Context, classID uuid.UUID) (release func(), err error)
}
