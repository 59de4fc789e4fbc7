package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LectureModel hanya kolom yang dibutuhkan fitur quiz; CRUD lecture ada di service course.
type LectureModel struct {
	LectureID       uuid.UUID  `gorm:"column:lecture_id;type:uuid;primaryKey" json:"lecture_id"`
	LectureCourseID uuid.UUID  `gorm:"column:lecture_course_id;type:uuid;not null;index" json:"lecture_course_id"`
	LectureTitle    string     `gorm:"column:lecture_title;type:varchar(255);not null" json:"lecture_title"`
	LectureQuizID   *uuid.UUID `gorm:"column:lecture_quiz_id;type:uuid" json:"lecture_quiz_id,omitempty"`

	LectureCreatedAt time.Time `gorm:"column:lecture_created_at;autoCreateTime" json:"lecture_created_at"`
	LectureUpdatedAt time.Time `gorm:"column:lecture_updated_at;autoUpdateTime" json:"lecture_updated_at"`
}

func (LectureModel) TableName() string {
	return "lectures"
}

func (m *LectureModel) BeforeCreate(tx *gorm.DB) error {
	if m.LectureID == uuid.Nil {
		m.LectureID = uuid.New()
	}
	return nil
}
