package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type DisableResult struct {
	ClassID                     uuid.UUID `json:"class_id"`
	ClassName                   string    `json:"class_name"`
	FutureLessonsDeleted        int64     `json:"future_lessons_deleted"`
	EnrollmentsMarkedInactive   int64     `json:"enrollments_marked_inactive"`
	ScheduleSlotsMarkedObsolete int64     `json:"schedule_slots_marked_obsolete"`
	DisabledAt                  time.Time `json:"disabled_at"`
}

type EnableResult struct {
	ClassID   uuid.UUID `json:"class_id"`
	ClassName string    `json:"class_name"`
	EnabledAt time.Time `json:"enabled_at"`
}

// Archiver orchestrates disabling and enabling a class. Disable cascades in
// one transaction under the class lock, so it cannot race a generation into
// leaving a dangling Scheduled lesson behind.
type Archiver struct {
	store  Store
	locker Locker
	now    func() time.Time
}

func NewArchiver(store Store, locker Locker) *Archiver {
	return &Archiver{store: store, locker: locker, now: time.Now}
}

// WithClock overrides the wall clock used to split past from future lessons.
func (a *Archiver) WithClock(now func() time.Time) *Archiver {
	a.now = now
	return a
}

// Disable hard-deletes future Scheduled lessons (history stays), marks every
// slot obsolete, deactivates enrollments and flips the class inactive, all in
// one transaction.
func (a *Archiver) Disable(ctx context.Context, classID uuid.UUID) (*DisableResult, error) {
	class, err := a.store.ClassByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !class.IsActive {
		return nil, &ValidationError{Field: "class_id", Message: "class is already disabled"}
	}

	release, err := a.locker.AcquireClassLock(ctx, classID)
	if err != nil {
		return nil, err
	}
	defer release()

	disabledAt := a.now()
	today := NormalizeDate(disabledAt)
	result := &DisableResult{ClassID: classID, ClassName: class.Name, DisabledAt: disabledAt}

	err = a.store.Atomic(ctx, func(s Store) error {
		deleted, err := s.DeleteFutureScheduled(ctx, classID, today)
		if err != nil {
			return err
		}
		result.FutureLessonsDeleted = deleted

		slots, err := s.MarkAllSlotsObsolete(ctx, classID)
		if err != nil {
			return err
		}
		result.ScheduleSlotsMarkedObsolete = slots

		enrollments, err := s.DeactivateByClass(ctx, classID)
		if err != nil {
			return err
		}
		result.EnrollmentsMarkedInactive = enrollments

		return s.SetClassActive(ctx, classID, false, &disabledAt)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Enable flips the class active again. No slots are restored and no lessons
// regenerated: a fresh schedule and a fresh generation run are required, so
// stale conflicts cannot resurface silently.
func (a *Archiver) Enable(ctx context.Context, classID uuid.UUID) (*EnableResult, error) {
	class, err := a.store.ClassByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.IsActive {
		return nil, &ValidationError{Field: "class_id", Message: "class is already active"}
	}

	if err := a.store.SetClassActive(ctx, classID, true, nil); err != nil {
		return nil, err
	}
	return &EnableResult{ClassID: classID, ClassName: class.Name, EnabledAt: a.now()}, nil
}
