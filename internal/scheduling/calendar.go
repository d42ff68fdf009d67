package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
)

// Calendar answers read-only questions about an academic year: which dates
// are non-teaching and which semester governs a date.
type Calendar struct {
	store CalendarStore
}

func NewCalendar(store CalendarStore) *Calendar {
	return &Calendar{store: store}
}

// NonTeachingDates returns the union of all teaching-break dates of the year
// intersected with [from, to].
func (c *Calendar) NonTeachingDates(ctx context.Context, yearID uuid.UUID, from, to time.Time) (DateSet, error) {
	if _, err := c.store.AcademicYearByID(ctx, yearID); err != nil {
		return nil, err
	}
	breaks, err := c.store.TeachingBreaksByYear(ctx, yearID)
	if err != nil {
		return nil, err
	}

	from, to = NormalizeDate(from), NormalizeDate(to)
	set := DateSet{}
	for _, b := range breaks {
		lo, hi := NormalizeDate(b.StartDate), NormalizeDate(b.EndDate)
		if lo.Before(from) {
			lo = from
		}
		if hi.After(to) {
			hi = to
		}
		for d := lo; !d.After(hi); d = d.AddDate(0, 0, 1) {
			set.Add(d)
		}
	}
	return set, nil
}

// SemesterFor returns the semester whose range contains date, or nil when the
// date falls between semesters (e.g. inside a break).
func (c *Calendar) SemesterFor(ctx context.Context, yearID uuid.UUID, date time.Time) (*models.Semester, error) {
	if _, err := c.store.AcademicYearByID(ctx, yearID); err != nil {
		return nil, err
	}
	semesters, err := c.store.SemestersByYear(ctx, yearID)
	if err != nil {
		return nil, err
	}

	date = NormalizeDate(date)
	for i := range semesters {
		s := semesters[i]
		if !date.Before(NormalizeDate(s.StartDate)) && !date.After(NormalizeDate(s.EndDate)) {
			return &s, nil
		}
	}
	return nil, nil
}
