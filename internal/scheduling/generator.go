package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
)

// GenerationPolicy controls how conflicts are handled during generation.
type GenerationPolicy struct {
	// SkipConflicts records a warning and skips the date when a candidate
	// collides with an existing lesson. When false, the first conflict aborts
	// the whole invocation with a ConflictError and nothing is written.
	SkipConflicts bool
}

func DefaultPolicy() GenerationPolicy {
	return GenerationPolicy{SkipConflicts: true}
}

// Generator expands weekly schedule slots over a date window into concrete
// Scheduled lessons.
type Generator struct {
	store    Store
	locker   Locker
	detector ConflictDetector
	now      func() time.Time
}

func NewGenerator(store Store, locker Locker) *Generator {
	return &Generator{
		store:    store,
		locker:   locker,
		detector: NewConflictDetector(),
		now:      time.Now,
	}
}

// WithClock overrides the wall clock used to resolve "today".
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate expands the given slots of one class over the window. It is
// idempotent: dates already holding a non-cancelled lesson for the slot's
// start time are skipped, so re-running with an overlapping window never
// duplicates lessons. Generation for a class is serialized by the class lock.
func (g *Generator) Generate(ctx context.Context, classID uuid.UUID, slots []models.ScheduleSlot, win Window, policy GenerationPolicy) (*GenerationReport, error) {
	for _, slot := range slots {
		if err := validateSlot(classID, slot); err != nil {
			return nil, err
		}
	}

	class, err := g.store.ClassByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	year, err := g.store.AcademicYearByID(ctx, class.AcademicYearID)
	if err != nil {
		return nil, err
	}

	yearWindow, ok := win.Clamp(year.StartDate, year.EndDate)
	if !ok {
		return nil, &SchedulingWindowError{From: win.From, To: win.To}
	}

	studentIDs := activeStudentIDs(class)

	release, err := g.locker.AcquireClassLock(ctx, classID)
	if err != nil {
		return nil, err
	}
	defer release()

	calendar := NewCalendar(g.store)
	nonTeaching, err := calendar.NonTeachingDates(ctx, class.AcademicYearID, yearWindow.From, yearWindow.To)
	if err != nil {
		return nil, err
	}

	today := NormalizeDate(g.now())
	report := &GenerationReport{ClassID: classID}

	run := func(s Store) error {
		for _, slot := range slots {
			slotWindow, ok, err := g.clampForSlot(ctx, slot, yearWindow)
			if err != nil {
				return err
			}
			sr := SlotReport{SlotID: slot.ID}
			if ok {
				if err := g.generateSlot(ctx, s, class, slot, slotWindow, nonTeaching, studentIDs, today, policy, &sr); err != nil {
					return err
				}
			}
			report.addSlot(sr)
		}
		return nil
	}

	// A strict run is atomic per invocation: the first conflict rolls back
	// every lesson written so far, across all slots.
	if !policy.SkipConflicts {
		err = g.store.Atomic(ctx, run)
	} else {
		err = run(g.store)
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// clampForSlot narrows the year-clamped window to the slot's semester when
// the slot is bound. A bound slot whose semester misses the window simply
// generates nothing.
func (g *Generator) clampForSlot(ctx context.Context, slot models.ScheduleSlot, yearWindow Window) (Window, bool, error) {
	semesterID, bound := SlotScopeOf(slot).Bound()
	if !bound {
		return yearWindow, true, nil
	}
	semester, err := g.store.SemesterByID(ctx, semesterID)
	if err != nil {
		return Window{}, false, err
	}
	w, ok := yearWindow.Clamp(semester.StartDate, semester.EndDate)
	return w, ok, nil
}

func (g *Generator) generateSlot(ctx context.Context, s Store, class *models.Class, slot models.ScheduleSlot, win Window, nonTeaching DateSet, studentIDs []uuid.UUID, today time.Time, policy GenerationPolicy, sr *SlotReport) error {
	day, _ := ParseDayOfWeek(slot.DayOfWeek)

	for d := firstWeekday(win.From, day.Weekday()); !d.After(win.To); d = d.AddDate(0, 0, 7) {
		if nonTeaching.Contains(d) {
			continue
		}

		exists, err := s.ExistsNonCancelled(ctx, class.ID, d, slot.StartTime)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		cand := Candidate{
			ClassID:       class.ID,
			ScheduledDate: d,
			StartTime:     slot.StartTime,
			EndTime:       slot.EndTime,
			TeacherID:     class.TeacherID,
			ClassroomID:   class.ClassroomID,
			StudentIDs:    studentIDs,
		}
		existing, err := s.LessonsOnDate(ctx, d)
		if err != nil {
			return err
		}
		if conflicts := g.detector.Detect(cand, existing); len(conflicts) > 0 {
			if !policy.SkipConflicts {
				return &ConflictError{Conflicts: conflicts}
			}
			sr.SkippedConflictCount++
			for _, c := range conflicts {
				sr.Warnings = append(sr.Warnings, FormatDate(d)+": "+c.String())
			}
			continue
		}

		if d.Before(today) {
			sr.SkippedPastDateCount++
			continue
		}

		slotID := slot.ID
		lesson := &models.Lesson{
			ClassID:       class.ID,
			ScheduledDate: d,
			StartTime:     slot.StartTime,
			EndTime:       slot.EndTime,
			Status:        models.LessonScheduled,
			SourceSlotID:  &slotID,
		}
		if err := s.CreateLesson(ctx, lesson); err != nil {
			// Another caller won the race for this date; the store's
			// uniqueness constraint is the final arbiter.
			if errors.Is(err, ErrDuplicateLesson) {
				continue
			}
			return err
		}
		sr.GeneratedCount++
	}
	return nil
}

func validateSlot(classID uuid.UUID, slot models.ScheduleSlot) error {
	if slot.ClassID != classID {
		return &ValidationError{Field: "class_id", Message: "slot does not belong to the class"}
	}
	if _, err := ParseDayOfWeek(slot.DayOfWeek); err != nil {
		return err
	}
	if err := ValidateTimeOfDay("start_time", slot.StartTime); err != nil {
		return err
	}
	if err := ValidateTimeOfDay("end_time", slot.EndTime); err != nil {
		return err
	}
	if slot.StartTime >= slot.EndTime {
		return &ValidationError{Field: "start_time", Message: "start time must precede end time"}
	}
	return nil
}

func activeStudentIDs(class *models.Class) []uuid.UUID {
	var ids []uuid.UUID
	for _, e := range class.Enrollments {
		if e.IsActive {
			ids = append(ids, e.StudentID)
		}
	}
	return ids
}

// firstWeekday returns the first date >= from falling on the given weekday.
func firstWeekday(from time.Time, w time.Weekday) time.Time {
	d := NormalizeDate(from)
	offset := (int(w) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}
