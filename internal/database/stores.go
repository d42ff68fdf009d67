package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
	"github.com/jsobotka/tutorbase-api/internal/scheduling"
	"gorm.io/gorm"
)

// Store is the gorm-backed implementation of the scheduling store interfaces.
type Store struct {
	db *gorm.DB
}

var _ scheduling.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Atomic(ctx context.Context, fn func(scheduling.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// --- CalendarStore ---

func (s *Store) AcademicYearByID(ctx context.Context, id uuid.UUID) (*models.AcademicYear, error) {
	var year models.AcademicYear
	if err := s.db.WithContext(ctx).First(&year, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "academic year", id)
	}
	return &year, nil
}

func (s *Store) SemesterByID(ctx context.Context, id uuid.UUID) (*models.Semester, error) {
	var semester models.Semester
	if err := s.db.WithContext(ctx).First(&semester, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "semester", id)
	}
	return &semester, nil
}

func (s *Store) SemestersByYear(ctx context.Context, yearID uuid.UUID) ([]models.Semester, error) {
	var semesters []models.Semester
	err := s.db.WithContext(ctx).
		Where("academic_year_id = ?", yearID).
		Order("semester_number asc").
		Find(&semesters).Error
	return semesters, err
}

func (s *Store) TeachingBreaksByYear(ctx context.Context, yearID uuid.UUID) ([]models.TeachingBreak, error) {
	var breaks []models.TeachingBreak
	err := s.db.WithContext(ctx).
		Where("academic_year_id = ?", yearID).
		Order("start_date asc").
		Find(&breaks).Error
	return breaks, err
}

// --- ClassStore ---

func (s *Store) ClassByID(ctx context.Context, id uuid.UUID) (*models.Class, error) {
	var class models.Class
	err := s.db.WithContext(ctx).
		Preload("Enrollments", "is_active = ?", true).
		First(&class, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "class", id)
	}
	return &class, nil
}

func (s *Store) SetClassActive(ctx context.Context, id uuid.UUID, active bool, disabledAt *time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Class{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": active, "disabled_at": disabledAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &scheduling.NotFoundError{Resource: "class", ID: id}
	}
	return nil
}

// --- SlotStore ---

func (s *Store) SlotByID(ctx context.Context, id uuid.UUID) (*models.ScheduleSlot, error) {
	var slot models.ScheduleSlot
	if err := s.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "schedule slot", id)
	}
	return &slot, nil
}

func (s *Store) SlotsByClass(ctx context.Context, classID uuid.UUID, includeObsolete bool) ([]models.ScheduleSlot, error) {
	q := s.db.WithContext(ctx).Where("class_id = ?", classID)
	if !includeObsolete {
		q = q.Where("is_obsolete = ?", false)
	}
	var slots []models.ScheduleSlot
	err := q.Order("day_of_week asc, start_time asc").Find(&slots).Error
	return slots, err
}

func (s *Store) CreateSlot(ctx context.Context, slot *models.ScheduleSlot) error {
	return s.db.WithContext(ctx).Create(slot).Error
}

func (s *Store) MarkSlotObsolete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.ScheduleSlot{}).
		Where("id = ?", id).
		Update("is_obsolete", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &scheduling.NotFoundError{Resource: "schedule slot", ID: id}
	}
	return nil
}

func (s *Store) MarkAllSlotsObsolete(ctx context.Context, classID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.ScheduleSlot{}).
		Where("class_id = ? AND is_obsolete = ?", classID, false).
		Update("is_obsolete", true)
	return res.RowsAffected, res.Error
}

func (s *Store) LessonCountsForSlot(ctx context.Context, slotID uuid.UUID, today time.Time) (past, future int64, err error) {
	if err = s.db.WithContext(ctx).Model(&models.Lesson{}).
		Where("source_slot_id = ? AND scheduled_date <= ?", slotID, today).
		Count(&past).Error; err != nil {
		return 0, 0, err
	}
	if err = s.db.WithContext(ctx).Model(&models.Lesson{}).
		Where("source_slot_id = ? AND scheduled_date > ? AND status = ?", slotID, today, models.LessonScheduled).
		Count(&future).Error; err != nil {
		return 0, 0, err
	}
	return past, future, nil
}

// --- LessonStore ---

func (s *Store) LessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := s.db.WithContext(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "lesson", id)
	}
	return &lesson, nil
}

func (s *Store) LessonsOnDate(ctx context.Context, date time.Time) ([]scheduling.LessonResources, error) {
	var lessons []models.Lesson
	if err := s.db.WithContext(ctx).Where("scheduled_date = ?", date).Find(&lessons).Error; err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, nil
	}

	classIDs := make([]uuid.UUID, 0, len(lessons))
	seen := make(map[uuid.UUID]struct{}, len(lessons))
	for _, l := range lessons {
		if _, ok := seen[l.ClassID]; !ok {
			seen[l.ClassID] = struct{}{}
			classIDs = append(classIDs, l.ClassID)
		}
	}

	var classes []models.Class
	err := s.db.WithContext(ctx).
		Preload("Enrollments", "is_active = ?", true).
		Where("id IN ?", classIDs).
		Find(&classes).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Class, len(classes))
	for i := range classes {
		byID[classes[i].ID] = &classes[i]
	}

	out := make([]scheduling.LessonResources, 0, len(lessons))
	for _, l := range lessons {
		lr := scheduling.LessonResources{Lesson: l}
		if class, ok := byID[l.ClassID]; ok {
			lr.TeacherID = class.TeacherID
			lr.ClassroomID = class.ClassroomID
			for _, e := range class.Enrollments {
				lr.StudentIDs = append(lr.StudentIDs, e.StudentID)
			}
		}
		out = append(out, lr)
	}
	return out, nil
}

func (s *Store) LessonsByClassBetween(ctx context.Context, classID uuid.UUID, from, to time.Time) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.WithContext(ctx).
		Where("class_id = ? AND scheduled_date BETWEEN ? AND ?", classID, from, to).
		Order("scheduled_date asc, start_time asc").
		Find(&lessons).Error
	return lessons, err
}

func (s *Store) ExistsNonCancelled(ctx context.Context, classID uuid.UUID, date time.Time, start string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Lesson{}).
		Where("class_id = ? AND scheduled_date = ? AND start_time = ? AND status <> ?",
			classID, date, start, models.LessonCancelled).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	if err := s.db.WithContext(ctx).Create(lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return scheduling.ErrDuplicateLesson
		}
		return err
	}
	return nil
}

func (s *Store) UpdateLessonCAS(ctx context.Context, id uuid.UUID, from models.LessonStatus, updates map[string]interface{}) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Lesson{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (s *Store) DeleteFutureScheduled(ctx context.Context, classID uuid.UUID, after time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("class_id = ? AND status = ? AND scheduled_date > ?", classID, models.LessonScheduled, after).
		Delete(&models.Lesson{})
	return res.RowsAffected, res.Error
}

func (s *Store) DeleteFutureScheduledBySlot(ctx context.Context, slotID uuid.UUID, after time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("source_slot_id = ? AND status = ? AND scheduled_date > ?", slotID, models.LessonScheduled, after).
		Delete(&models.Lesson{})
	return res.RowsAffected, res.Error
}

// --- EnrollmentStore ---

func (s *Store) DeactivateByClass(ctx context.Context, classID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("class_id = ? AND is_active = ?", classID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func notFound(err error, resource string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &scheduling.NotFoundError{Resource: resource, ID: id}
	}
	return err
}
