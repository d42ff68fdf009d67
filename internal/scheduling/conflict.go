package scheduling

import (
	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
)

// ConflictDetector finds resource collisions between a candidate lesson and
// existing lessons. It is pure: the caller supplies the lessons to check
// against and decides what to do with the result.
type ConflictDetector struct{}

func NewConflictDetector() ConflictDetector {
	return ConflictDetector{}
}

// Detect returns every teacher, classroom and student collision between the
// candidate and the given lessons. Cancelled lessons do not occupy their
// slot. Teacher, classroom and student checks are independent: one existing
// lesson can contribute several conflicts.
func (ConflictDetector) Detect(cand Candidate, existing []LessonResources) []Conflict {
	var conflicts []Conflict
	for _, e := range existing {
		if e.Lesson.Status == models.LessonCancelled {
			continue
		}
		if e.Lesson.ID == cand.LessonID {
			continue
		}
		if !sameDate(e.Lesson.ScheduledDate, cand.ScheduledDate) {
			continue
		}
		if !timesOverlap(cand.StartTime, cand.EndTime, e.Lesson.StartTime, e.Lesson.EndTime) {
			continue
		}

		if e.TeacherID == cand.TeacherID {
			conflicts = append(conflicts, Conflict{Type: ConflictTeacher, ResourceID: e.TeacherID, LessonID: e.Lesson.ID})
		}
		if e.ClassroomID == cand.ClassroomID {
			conflicts = append(conflicts, Conflict{Type: ConflictClassroom, ResourceID: e.ClassroomID, LessonID: e.Lesson.ID})
		}
		for _, sid := range sharedStudents(cand.StudentIDs, e.StudentIDs) {
			conflicts = append(conflicts, Conflict{Type: ConflictStudent, ResourceID: sid, LessonID: e.Lesson.ID})
		}
	}
	return conflicts
}

func sharedStudents(a, b []uuid.UUID) []uuid.UUID {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	var shared []uuid.UUID
	for _, id := range b {
		if _, ok := set[id]; ok {
			shared = append(shared, id)
		}
	}
	return shared
}
