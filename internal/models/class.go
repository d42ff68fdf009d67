package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Class struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name           string     `gorm:"size:200;not null" json:"name"`
	AcademicYearID uuid.UUID  `gorm:"type:uuid;not null;index" json:"academic_year_id"`
	TeacherID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"teacher_id"`
	ClassroomID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"classroom_id"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	DisabledAt     *time.Time `json:"disabled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	AcademicYear  AcademicYear   `gorm:"foreignKey:AcademicYearID" json:"academic_year,omitempty"`
	Teacher       Teacher        `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Classroom     Classroom      `gorm:"foreignKey:ClassroomID" json:"classroom,omitempty"`
	Enrollments   []Enrollment   `gorm:"foreignKey:ClassID" json:"enrollments,omitempty"`
	ScheduleSlots []ScheduleSlot `gorm:"foreignKey:ClassID" json:"schedule_slots,omitempty"`
	Lessons       []Lesson       `gorm:"foreignKey:ClassID" json:"lessons,omitempty"`
}

func (Class) TableName() string {
	return "classes"
}

func (c *Class) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Enrollment struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClassID    uuid.UUID `gorm:"type:uuid;not null;index" json:"class_id"`
	StudentID  uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	EnrolledAt time.Time `json:"enrolled_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Student Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type Teacher struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FirstName string    `gorm:"size:100;not null" json:"first_name"`
	LastName  string    `gorm:"size:100;not null" json:"last_name"`
	Email     string    `gorm:"size:255;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Teacher) TableName() string {
	return "teachers"
}

func (t *Teacher) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type Classroom struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Capacity  int       `gorm:"default:0" json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Classroom) TableName() string {
	return "classrooms"
}

func (r *Classroom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Student struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FirstName string    `gorm:"size:100;not null" json:"first_name"`
	LastName  string    `gorm:"size:100;not null" json:"last_name"`
	Email     string    `gorm:"size:255;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Student) TableName() string {
	return "students"
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
