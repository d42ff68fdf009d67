package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
)

const (
	// DateLayout is the wire format for dates (zone-naive civil dates).
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format for times of day (24-hour HH:mm).
	TimeLayout = "15:04"
)

type DayOfWeek string

const (
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
	Sunday    DayOfWeek = "Sunday"
)

var weekdays = map[DayOfWeek]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

func ParseDayOfWeek(s string) (DayOfWeek, error) {
	d := DayOfWeek(s)
	if _, ok := weekdays[d]; !ok {
		return "", &ValidationError{Field: "day_of_week", Message: fmt.Sprintf("unknown day of week %q", s)}
	}
	return d, nil
}

func (d DayOfWeek) Weekday() time.Weekday {
	return weekdays[d]
}

// ValidateTimeOfDay checks that s is a zero-padded 24-hour HH:mm string.
// Valid values compare correctly as plain strings.
func ValidateTimeOfDay(field, s string) error {
	if len(s) != 5 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("time %q is not in HH:mm format", s)}
	}
	if _, err := time.Parse(TimeLayout, s); err != nil {
		return &ValidationError{Field: field, Message: fmt.Sprintf("time %q is not in HH:mm format", s)}
	}
	return nil
}

// timesOverlap reports half-open interval overlap: [aStart, aEnd) vs [bStart, bEnd).
func timesOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}

// NormalizeDate strips the time-of-day component, leaving a civil date
// pinned to UTC midnight. All engine date math goes through this.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: fmt.Sprintf("date %q is not in yyyy-MM-dd format", s)}
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func sameDate(a, b time.Time) bool {
	return NormalizeDate(a).Equal(NormalizeDate(b))
}

// DateSet holds civil dates keyed by their yyyy-MM-dd form.
type DateSet map[string]struct{}

func (s DateSet) Add(t time.Time) {
	s[FormatDate(t)] = struct{}{}
}

func (s DateSet) Contains(t time.Time) bool {
	_, ok := s[FormatDate(t)]
	return ok
}

// Window is an inclusive [From, To] civil date range.
type Window struct {
	From time.Time
	To   time.Time
}

func NewWindow(from, to time.Time) Window {
	return Window{From: NormalizeDate(from), To: NormalizeDate(to)}
}

func (w Window) Empty() bool {
	return w.From.After(w.To)
}

// Clamp intersects w with [from, to]. The second return is false when the
// intersection is empty.
func (w Window) Clamp(from, to time.Time) (Window, bool) {
	c := w
	from, to = NormalizeDate(from), NormalizeDate(to)
	if from.After(c.From) {
		c.From = from
	}
	if to.Before(c.To) {
		c.To = to
	}
	return c, !c.Empty()
}

// SlotScope is the semester binding of a schedule slot: either global
// (applies to every semester of the owning year) or bound to one semester.
type SlotScope struct {
	semesterID *uuid.UUID
}

func GlobalScope() SlotScope {
	return SlotScope{}
}

func BoundTo(semesterID uuid.UUID) SlotScope {
	id := semesterID
	return SlotScope{semesterID: &id}
}

// Bound returns the bound semester id, or false for a global scope.
func (s SlotScope) Bound() (uuid.UUID, bool) {
	if s.semesterID == nil {
		return uuid.Nil, false
	}
	return *s.semesterID, true
}

func SlotScopeOf(slot models.ScheduleSlot) SlotScope {
	if slot.SemesterID == nil {
		return GlobalScope()
	}
	return BoundTo(*slot.SemesterID)
}

// Candidate is a prospective lesson checked for resource collisions.
// LessonID is set only when the candidate replaces an existing lesson
// (reschedule), so the lesson does not collide with itself.
type Candidate struct {
	ClassID       uuid.UUID
	LessonID      uuid.UUID
	ScheduledDate time.Time
	StartTime     string
	EndTime       string
	TeacherID     uuid.UUID
	ClassroomID   uuid.UUID
	StudentIDs    []uuid.UUID
}

// LessonResources is an existing lesson together with the resources it
// occupies, resolved from its owning class.
type LessonResources struct {
	Lesson      models.Lesson
	TeacherID   uuid.UUID
	ClassroomID uuid.UUID
	StudentIDs  []uuid.UUID
}

type ConflictType string

const (
	ConflictTeacher   ConflictType = "Teacher"
	ConflictStudent   ConflictType = "Student"
	ConflictClassroom ConflictType = "Classroom"
)

// Conflict is one detected resource collision between a candidate and an
// existing lesson.
type Conflict struct {
	Type       ConflictType `json:"type"`
	ResourceID uuid.UUID    `json:"resource_id"`
	LessonID   uuid.UUID    `json:"lesson_id"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s conflict: resource %s already booked by lesson %s", c.Type, c.ResourceID, c.LessonID)
}
