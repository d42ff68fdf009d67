package scheduling

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
)

// fakeStore is an in-memory Store used to exercise the engine without a
// database. Atomic snapshots the lesson and slot state and restores it when
// fn fails, mimicking a transaction rollback.
type fakeStore struct {
	years     map[uuid.UUID]*models.AcademicYear
	semesters map[uuid.UUID]*models.Semester
	breaks    []models.TeachingBreak
	classes   map[uuid.UUID]*models.Class
	slots     map[uuid.UUID]*models.ScheduleSlot
	lessons   map[uuid.UUID]*models.Lesson
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		years:     map[uuid.UUID]*models.AcademicYear{},
		semesters: map[uuid.UUID]*models.Semester{},
		classes:   map[uuid.UUID]*models.Class{},
		slots:     map[uuid.UUID]*models.ScheduleSlot{},
		lessons:   map[uuid.UUID]*models.Lesson{},
	}
}

func (f *fakeStore) Atomic(ctx context.Context, fn func(Store) error) error {
	lessonSnap := make(map[uuid.UUID]*models.Lesson, len(f.lessons))
	for id, l := range f.lessons {
		cp := *l
		lessonSnap[id] = &cp
	}
	slotSnap := make(map[uuid.UUID]*models.ScheduleSlot, len(f.slots))
	for id, s := range f.slots {
		cp := *s
		slotSnap[id] = &cp
	}
	classSnap := make(map[uuid.UUID]*models.Class, len(f.classes))
	for id, c := range f.classes {
		cp := *c
		cp.Enrollments = append([]models.Enrollment(nil), c.Enrollments...)
		classSnap[id] = &cp
	}

	if err := fn(f); err != nil {
		f.lessons = lessonSnap
		f.slots = slotSnap
		f.classes = classSnap
		return err
	}
	return nil
}

func (f *fakeStore) AcademicYearByID(ctx context.Context, id uuid.UUID) (*models.AcademicYear, error) {
	y, ok := f.years[id]
	if !ok {
		return nil, &NotFoundError{Resource: "academic year", ID: id}
	}
	return y, nil
}

func (f *fakeStore) SemesterByID(ctx context.Context, id uuid.UUID) (*models.Semester, error) {
	s, ok := f.semesters[id]
	if !ok {
		return nil, &NotFoundError{Resource: "semester", ID: id}
	}
	return s, nil
}

func (f *fakeStore) SemestersByYear(ctx context.Context, yearID uuid.UUID) ([]models.Semester, error) {
	var out []models.Semester
	for _, s := range f.semesters {
		if s.AcademicYearID == yearID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SemesterNumber < out[j].SemesterNumber })
	return out, nil
}

func (f *fakeStore) TeachingBreaksByYear(ctx context.Context, yearID uuid.UUID) ([]models.TeachingBreak, error) {
	var out []models.TeachingBreak
	for _, b := range f.breaks {
		if b.AcademicYearID == yearID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) ClassByID(ctx context.Context, id uuid.UUID) (*models.Class, error) {
	c, ok := f.classes[id]
	if !ok {
		return nil, &NotFoundError{Resource: "class", ID: id}
	}
	cp := *c
	cp.Enrollments = nil
	for _, e := range c.Enrollments {
		if e.IsActive {
			cp.Enrollments = append(cp.Enrollments, e)
		}
	}
	return &cp, nil
}

func (f *fakeStore) SetClassActive(ctx context.Context, id uuid.UUID, active bool, disabledAt *time.Time) error {
	c, ok := f.classes[id]
	if !ok {
		return &NotFoundError{Resource: "class", ID: id}
	}
	c.IsActive = active
	c.DisabledAt = disabledAt
	return nil
}

func (f *fakeStore) SlotByID(ctx context.Context, id uuid.UUID) (*models.ScheduleSlot, error) {
	s, ok := f.slots[id]
	if !ok {
		return nil, &NotFoundError{Resource: "schedule slot", ID: id}
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) SlotsByClass(ctx context.Context, classID uuid.UUID, includeObsolete bool) ([]models.ScheduleSlot, error) {
	var out []models.ScheduleSlot
	for _, s := range f.slots {
		if s.ClassID != classID {
			continue
		}
		if s.IsObsolete && !includeObsolete {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStore) CreateSlot(ctx context.Context, slot *models.ScheduleSlot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	cp := *slot
	f.slots[slot.ID] = &cp
	return nil
}

func (f *fakeStore) MarkSlotObsolete(ctx context.Context, id uuid.UUID) error {
	s, ok := f.slots[id]
	if !ok {
		return &NotFoundError{Resource: "schedule slot", ID: id}
	}
	s.IsObsolete = true
	return nil
}

func (f *fakeStore) MarkAllSlotsObsolete(ctx context.Context, classID uuid.UUID) (int64, error) {
	var n int64
	for _, s := range f.slots {
		if s.ClassID == classID && !s.IsObsolete {
			s.IsObsolete = true
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) LessonCountsForSlot(ctx context.Context, slotID uuid.UUID, today time.Time) (past, future int64, err error) {
	for _, l := range f.lessons {
		if l.SourceSlotID == nil || *l.SourceSlotID != slotID {
			continue
		}
		if !l.ScheduledDate.After(today) {
			past++
		} else if l.Status == models.LessonScheduled {
			future++
		}
	}
	return past, future, nil
}

func (f *fakeStore) LessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	l, ok := f.lessons[id]
	if !ok {
		return nil, &NotFoundError{Resource: "lesson", ID: id}
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) LessonsOnDate(ctx context.Context, date time.Time) ([]LessonResources, error) {
	var out []LessonResources
	for _, l := range f.lessons {
		if !sameDate(l.ScheduledDate, date) {
			continue
		}
		lr := LessonResources{Lesson: *l}
		if c, ok := f.classes[l.ClassID]; ok {
			lr.TeacherID = c.TeacherID
			lr.ClassroomID = c.ClassroomID
			for _, e := range c.Enrollments {
				if e.IsActive {
					lr.StudentIDs = append(lr.StudentIDs, e.StudentID)
				}
			}
		}
		out = append(out, lr)
	}
	return out, nil
}

func (f *fakeStore) LessonsByClassBetween(ctx context.Context, classID uuid.UUID, from, to time.Time) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range f.lessons {
		if l.ClassID == classID && !l.ScheduledDate.Before(from) && !l.ScheduledDate.After(to) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeStore) ExistsNonCancelled(ctx context.Context, classID uuid.UUID, date time.Time, start string) (bool, error) {
	for _, l := range f.lessons {
		if l.ClassID == classID && sameDate(l.ScheduledDate, date) && l.StartTime == start && l.Status != models.LessonCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	for _, l := range f.lessons {
		if l.ClassID == lesson.ClassID && sameDate(l.ScheduledDate, lesson.ScheduledDate) &&
			l.StartTime == lesson.StartTime && l.Status != models.LessonCancelled {
			return ErrDuplicateLesson
		}
	}
	if lesson.ID == uuid.Nil {
		lesson.ID = uuid.New()
	}
	cp := *lesson
	f.lessons[lesson.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateLessonCAS(ctx context.Context, id uuid.UUID, from models.LessonStatus, updates map[string]interface{}) (bool, error) {
	l, ok := f.lessons[id]
	if !ok || l.Status != from {
		return false, nil
	}
	for col, v := range updates {
		switch col {
		case "status":
			l.Status = v.(models.LessonStatus)
		case "conducted_at":
			t := v.(time.Time)
			l.ConductedAt = &t
		case "cancellation_reason":
			r := v.(string)
			l.CancellationReason = &r
		case "notes":
			l.Notes = v.(string)
		case "scheduled_date":
			l.ScheduledDate = v.(time.Time)
		case "start_time":
			l.StartTime = v.(string)
		case "end_time":
			l.EndTime = v.(string)
		}
	}
	return true, nil
}

func (f *fakeStore) DeleteFutureScheduled(ctx context.Context, classID uuid.UUID, after time.Time) (int64, error) {
	var n int64
	for id, l := range f.lessons {
		if l.ClassID == classID && l.Status == models.LessonScheduled && l.ScheduledDate.After(after) {
			delete(f.lessons, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DeleteFutureScheduledBySlot(ctx context.Context, slotID uuid.UUID, after time.Time) (int64, error) {
	var n int64
	for id, l := range f.lessons {
		if l.SourceSlotID != nil && *l.SourceSlotID == slotID && l.Status == models.LessonScheduled && l.ScheduledDate.After(after) {
			delete(f.lessons, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DeactivateByClass(ctx context.Context, classID uuid.UUID) (int64, error) {
	c, ok := f.classes[classID]
	if !ok {
		return 0, &NotFoundError{Resource: "class", ID: classID}
	}
	var n int64
	for i := range c.Enrollments {
		if c.Enrollments[i].IsActive {
			c.Enrollments[i].IsActive = false
			n++
		}
	}
	return n, nil
}

type fakeLocker struct {
	acquired int
}

func (l *fakeLocker) AcquireClassLock(ctx context.Context, classID uuid.UUID) (func(), error) {
	l.acquired++
	return func() {}, nil
}

// --- fixture helpers ---

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fixture struct {
	store  *fakeStore
	locker *fakeLocker

	yearID      uuid.UUID
	semester1ID uuid.UUID
	semester2ID uuid.UUID
	classID     uuid.UUID
	teacherID   uuid.UUID
	classroomID uuid.UUID
	studentIDs  []uuid.UUID
}

// newFixture builds the calendar from the reference scenario: a year spanning
// 2025-09-01..2026-06-30 with a winter break 2025-12-22..2026-01-05, and one
// class with two enrolled students.
func newFixture() *fixture {
	f := &fixture{
		store:       newFakeStore(),
		locker:      &fakeLocker{},
		yearID:      uuid.New(),
		semester1ID: uuid.New(),
		semester2ID: uuid.New(),
		classID:     uuid.New(),
		teacherID:   uuid.New(),
		classroomID: uuid.New(),
		studentIDs:  []uuid.UUID{uuid.New(), uuid.New()},
	}

	f.store.years[f.yearID] = &models.AcademicYear{
		ID:        f.yearID,
		Name:      "2025/2026",
		StartDate: date(2025, time.September, 1),
		EndDate:   date(2026, time.June, 30),
		IsActive:  true,
	}
	f.store.semesters[f.semester1ID] = &models.Semester{
		ID:             f.semester1ID,
		AcademicYearID: f.yearID,
		SemesterNumber: 1,
		StartDate:      date(2025, time.September, 1),
		EndDate:        date(2025, time.December, 21),
	}
	f.store.semesters[f.semester2ID] = &models.Semester{
		ID:             f.semester2ID,
		AcademicYearID: f.yearID,
		SemesterNumber: 2,
		StartDate:      date(2026, time.January, 6),
		EndDate:        date(2026, time.June, 30),
	}
	f.store.breaks = append(f.store.breaks, models.TeachingBreak{
		ID:             uuid.New(),
		AcademicYearID: f.yearID,
		Name:           "Winter break",
		StartDate:      date(2025, time.December, 22),
		EndDate:        date(2026, time.January, 5),
		BreakType:      models.BreakVacation,
	})

	f.addClass(f.classID, f.teacherID, f.classroomID, f.studentIDs)
	return f
}

func (f *fixture) addClass(classID, teacherID, classroomID uuid.UUID, studentIDs []uuid.UUID) {
	class := &models.Class{
		ID:             classID,
		Name:           "class-" + classID.String()[:8],
		AcademicYearID: f.yearID,
		TeacherID:      teacherID,
		ClassroomID:    classroomID,
		IsActive:       true,
	}
	for _, sid := range studentIDs {
		class.Enrollments = append(class.Enrollments, models.Enrollment{
			ID: uuid.New(), ClassID: classID, StudentID: sid, IsActive: true,
		})
	}
	f.store.classes[classID] = class
}

func (f *fixture) addSlot(classID uuid.UUID, day DayOfWeek, start, end string, semesterID *uuid.UUID) models.ScheduleSlot {
	slot := models.ScheduleSlot{
		ID:         uuid.New(),
		ClassID:    classID,
		DayOfWeek:  string(day),
		StartTime:  start,
		EndTime:    end,
		SemesterID: semesterID,
	}
	cp := slot
	f.store.slots[slot.ID] = &cp
	return slot
}

func (f *fixture) addLesson(classID uuid.UUID, d time.Time, start, end string, status models.LessonStatus) *models.Lesson {
	lesson := &models.Lesson{
		ID:            uuid.New(),
		ClassID:       classID,
		ScheduledDate: d,
		StartTime:     start,
		EndTime:       end,
		Status:        status,
	}
	f.store.lessons[lesson.ID] = lesson
	return lesson
}

func (f *fixture) lessonDates(classID uuid.UUID) []string {
	var dates []string
	for _, l := range f.store.lessons {
		if l.ClassID == classID {
			dates = append(dates, FormatDate(l.ScheduledDate))
		}
	}
	sort.Strings(dates)
	return dates
}
