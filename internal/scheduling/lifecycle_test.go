package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
)

func newTestLifecycle(f *fixture, now time.Time) *Lifecycle {
	return NewLifecycle(f.store).WithClock(fixedClock(now))
}

func TestConduct(t *testing.T) {
	today := date(2025, time.September, 15)

	t.Run("marks a held lesson conducted", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		lesson := f.addLesson(f.classID, today, "10:00", "11:00", models.LessonScheduled)

		got, err := lc.Conduct(context.Background(), lesson.ID, "covered chapter 3")
		if err != nil {
			t.Fatalf("Conduct() error = %v", err)
		}
		if got.Status != models.LessonConducted {
			t.Errorf("status = %s, want %s", got.Status, models.LessonConducted)
		}
		if got.ConductedAt == nil || !got.ConductedAt.Equal(today) {
			t.Errorf("conducted_at = %v, want %v", got.ConductedAt, today)
		}
		if got.Notes != "covered chapter 3" {
			t.Errorf("notes = %q", got.Notes)
		}
	})

	t.Run("rejects a future lesson", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		lesson := f.addLesson(f.classID, date(2025, time.September, 22), "10:00", "11:00", models.LessonScheduled)

		_, err := lc.Conduct(context.Background(), lesson.ID, "")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Conduct() error = %v, want ValidationError", err)
		}
		if f.store.lessons[lesson.ID].Status != models.LessonScheduled {
			t.Errorf("lesson status changed despite rejection")
		}
	})

	t.Run("unknown lesson", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		_, err := lc.Conduct(context.Background(), uuid.New(), "")
		var nfErr *NotFoundError
		if !errors.As(err, &nfErr) {
			t.Fatalf("Conduct() error = %v, want NotFoundError", err)
		}
	})
}

func TestCancel(t *testing.T) {
	today := date(2025, time.September, 15)

	t.Run("cancels with a reason", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		lesson := f.addLesson(f.classID, date(2025, time.September, 22), "10:00", "11:00", models.LessonScheduled)

		got, err := lc.Cancel(context.Background(), lesson.ID, "teacher ill")
		if err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}
		if got.Status != models.LessonCancelled {
			t.Errorf("status = %s, want %s", got.Status, models.LessonCancelled)
		}
		if got.CancellationReason == nil || *got.CancellationReason != "teacher ill" {
			t.Errorf("cancellation_reason = %v", got.CancellationReason)
		}
	})

	t.Run("reason is mandatory", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		lesson := f.addLesson(f.classID, date(2025, time.September, 22), "10:00", "11:00", models.LessonScheduled)

		_, err := lc.Cancel(context.Background(), lesson.ID, "")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Cancel() error = %v, want ValidationError", err)
		}
	})
}

func TestMarkNoShow(t *testing.T) {
	today := date(2025, time.September, 15)

	t.Run("only after the date has passed", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		past := f.addLesson(f.classID, date(2025, time.September, 8), "10:00", "11:00", models.LessonScheduled)
		sameDay := f.addLesson(f.classID, today, "10:00", "11:00", models.LessonScheduled)

		got, err := lc.MarkNoShow(context.Background(), past.ID)
		if err != nil {
			t.Fatalf("MarkNoShow() error = %v", err)
		}
		if got.Status != models.LessonNoShow {
			t.Errorf("status = %s, want %s", got.Status, models.LessonNoShow)
		}

		_, err = lc.MarkNoShow(context.Background(), sameDay.ID)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("MarkNoShow() on same-day lesson error = %v, want ValidationError", err)
		}
	})
}

func TestTransitionTable(t *testing.T) {
	today := date(2025, time.September, 15)
	past := date(2025, time.September, 8)

	// Every transition out of a non-Scheduled state must fail and report the
	// state the lesson is actually in.
	tests := []struct {
		name string
		from models.LessonStatus
		call func(lc *Lifecycle, id uuid.UUID) error
	}{
		{
			name: "conduct a conducted lesson",
			from: models.LessonConducted,
			call: func(lc *Lifecycle, id uuid.UUID) error {
				_, err := lc.Conduct(context.Background(), id, "")
				return err
			},
		},
		{
			name: "conduct a cancelled lesson",
			from: models.LessonCancelled,
			call: func(lc *Lifecycle, id uuid.UUID) error {
				_, err := lc.Conduct(context.Background(), id, "")
				return err
			},
		},
		{
			name: "cancel a conducted lesson",
			from: models.LessonConducted,
			call: func(lc *Lifecycle, id uuid.UUID) error {
				_, err := lc.Cancel(context.Background(), id, "late request")
				return err
			},
		},
		{
			name: "cancel a no-show lesson",
			from: models.LessonNoShow,
			call: func(lc *Lifecycle, id uuid.UUID) error {
				_, err := lc.Cancel(context.Background(), id, "late request")
				return err
			},
		},
		{
			name: "no-show a cancelled lesson",
			from: models.LessonCancelled,
			call: func(lc *Lifecycle, id uuid.UUID) error {
				_, err := lc.MarkNoShow(context.Background(), id)
				return err
			},
		},
		{
			name: "reschedule a make-up lesson",
			from: models.LessonMakeUp,
			call: func(lc *Lifecycle, id uuid.UUID) error {
				_, err := lc.Reschedule(context.Background(), id, date(2025, time.October, 1), "10:00", "11:00")
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			lc := newTestLifecycle(f, today)
			lesson := f.addLesson(f.classID, past, "10:00", "11:00", tt.from)

			err := tt.call(lc, lesson.ID)
			var stateErr *InvalidStateTransitionError
			if !errors.As(err, &stateErr) {
				t.Fatalf("error = %v, want InvalidStateTransitionError", err)
			}
			if stateErr.From != tt.from {
				t.Errorf("reported From = %s, want %s", stateErr.From, tt.from)
			}
			if f.store.lessons[lesson.ID].Status != tt.from {
				t.Errorf("lesson status changed despite rejection")
			}
		})
	}
}

func TestCreateMakeup(t *testing.T) {
	today := date(2025, time.September, 15)

	t.Run("replaces a cancelled lesson", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		original := f.addLesson(f.classID, date(2025, time.September, 8), "10:00", "11:00", models.LessonCancelled)

		makeup, err := lc.CreateMakeup(context.Background(), original.ID, date(2025, time.September, 20), "14:00", "15:00")
		if err != nil {
			t.Fatalf("CreateMakeup() error = %v", err)
		}
		if makeup.Status != models.LessonMakeUp {
			t.Errorf("status = %s, want %s", makeup.Status, models.LessonMakeUp)
		}
		if makeup.OriginalLessonID == nil || *makeup.OriginalLessonID != original.ID {
			t.Errorf("make-up is not linked to the original lesson")
		}
		if f.store.lessons[original.ID].Status != models.LessonCancelled {
			t.Errorf("original lesson left %s, want it to stay Cancelled", f.store.lessons[original.ID].Status)
		}
	})

	t.Run("original must be cancelled", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		original := f.addLesson(f.classID, date(2025, time.September, 8), "10:00", "11:00", models.LessonScheduled)

		_, err := lc.CreateMakeup(context.Background(), original.ID, date(2025, time.September, 20), "14:00", "15:00")
		var stateErr *InvalidStateTransitionError
		if !errors.As(err, &stateErr) {
			t.Fatalf("CreateMakeup() error = %v, want InvalidStateTransitionError", err)
		}
	})

	t.Run("make-up slot is conflict-checked", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		original := f.addLesson(f.classID, date(2025, time.September, 8), "10:00", "11:00", models.LessonCancelled)

		// The teacher is busy in another class at the proposed time.
		otherClass := uuid.New()
		f.addClass(otherClass, f.teacherID, uuid.New(), nil)
		f.addLesson(otherClass, date(2025, time.September, 20), "14:00", "15:00", models.LessonScheduled)

		_, err := lc.CreateMakeup(context.Background(), original.ID, date(2025, time.September, 20), "14:30", "15:30")
		var conflictErr *ConflictError
		if !errors.As(err, &conflictErr) {
			t.Fatalf("CreateMakeup() error = %v, want ConflictError", err)
		}
	})

	t.Run("cancelled original does not block its own time", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		original := f.addLesson(f.classID, date(2025, time.September, 8), "10:00", "11:00", models.LessonCancelled)

		makeup, err := lc.CreateMakeup(context.Background(), original.ID, date(2025, time.September, 8), "10:00", "11:00")
		if err != nil {
			t.Fatalf("CreateMakeup() at the original's time error = %v", err)
		}
		if makeup.Status != models.LessonMakeUp {
			t.Errorf("status = %s, want %s", makeup.Status, models.LessonMakeUp)
		}
	})

	t.Run("invalid times", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		original := f.addLesson(f.classID, date(2025, time.September, 8), "10:00", "11:00", models.LessonCancelled)

		_, err := lc.CreateMakeup(context.Background(), original.ID, date(2025, time.September, 20), "15:00", "14:00")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("CreateMakeup() error = %v, want ValidationError", err)
		}
	})
}

func TestReschedule(t *testing.T) {
	today := date(2025, time.September, 15)

	t.Run("moves the lesson in place", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		lesson := f.addLesson(f.classID, date(2025, time.September, 22), "10:00", "11:00", models.LessonScheduled)

		got, err := lc.Reschedule(context.Background(), lesson.ID, date(2025, time.September, 24), "16:00", "17:00")
		if err != nil {
			t.Fatalf("Reschedule() error = %v", err)
		}
		if got.ID != lesson.ID {
			t.Errorf("a new lesson was created instead of moving the existing one")
		}
		if FormatDate(got.ScheduledDate) != "2025-09-24" || got.StartTime != "16:00" || got.EndTime != "17:00" {
			t.Errorf("lesson left at %s %s-%s", FormatDate(got.ScheduledDate), got.StartTime, got.EndTime)
		}
		if got.Status != models.LessonScheduled {
			t.Errorf("status = %s, want %s", got.Status, models.LessonScheduled)
		}
	})

	t.Run("does not conflict with itself", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		lesson := f.addLesson(f.classID, date(2025, time.September, 22), "10:00", "11:00", models.LessonScheduled)

		// Shifting within the lesson's own occupied window must pass.
		if _, err := lc.Reschedule(context.Background(), lesson.ID, date(2025, time.September, 22), "10:30", "11:30"); err != nil {
			t.Fatalf("Reschedule() error = %v", err)
		}
	})

	t.Run("target time is conflict-checked", func(t *testing.T) {
		f := newFixture()
		lc := newTestLifecycle(f, today)
		lesson := f.addLesson(f.classID, date(2025, time.September, 22), "10:00", "11:00", models.LessonScheduled)

		otherClass := uuid.New()
		f.addClass(otherClass, f.teacherID, uuid.New(), nil)
		f.addLesson(otherClass, date(2025, time.September, 24), "16:00", "17:00", models.LessonScheduled)

		_, err := lc.Reschedule(context.Background(), lesson.ID, date(2025, time.September, 24), "16:00", "17:00")
		var conflictErr *ConflictError
		if !errors.As(err, &conflictErr) {
			t.Fatalf("Reschedule() error = %v, want ConflictError", err)
		}
		if got := f.store.lessons[lesson.ID]; FormatDate(got.ScheduledDate) != "2025-09-22" {
			t.Errorf("lesson moved despite conflict")
		}
	})
}
