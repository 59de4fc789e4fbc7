// file: internals/features/quizzes/repository/gorm_store.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	lectureModel "coursemarket_backend/internals/features/lectures/model"
	"coursemarket_backend/internals/features/quizzes/model"
)

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// Migrate membuat tabel + unique index (quiz, user) untuk quiz_attempts.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&lectureModel.LectureModel{},
		&model.QuizModel{},
		&model.QuizAttemptModel{},
	)
}

/* =======================
   Quiz
======================= */

func (s *GormStore) CreateQuiz(ctx context.Context, quiz *model.QuizModel) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return fmt.Errorf("create quiz: %w", err)
		}

		// hanya kolom quiz yang disentuh; course dll. tetap
		res := tx.Model(&lectureModel.LectureModel{}).
			Where("lecture_id = ?", quiz.QuizLectureID).
			Update("lecture_quiz_id", quiz.QuizID)
		if res.Error != nil {
			return fmt.Errorf("link lecture quiz: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrLectureNotFound
		}
		return nil
	})
}

func (s *GormStore) GetQuiz(ctx context.Context, quizID uuid.UUID) (*model.QuizModel, error) {
	var quiz model.QuizModel
	if err := s.DB.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Take(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

/* =======================
   Attempts
======================= */

func (s *GormStore) FindAttempt(ctx context.Context, quizID, userID uuid.UUID) (*model.QuizAttemptModel, error) {
	return findAttempt(s.DB.WithContext(ctx), quizID, userID)
}

func findAttempt(db *gorm.DB, quizID, userID uuid.UUID) (*model.QuizAttemptModel, error) {
	var attempt model.QuizAttemptModel
	err := db.
		Where("quiz_attempt_quiz_id = ? AND quiz_attempt_user_id = ?", quizID, userID).
		Take(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

// CreateAttempt: cek + insert dalam satu transaksi; unique index tetap jadi
// penjaga terakhir kalau dua submit benar-benar bersamaan.
func (s *GormStore) CreateAttempt(ctx context.Context, attempt *model.QuizAttemptModel) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findAttempt(tx, attempt.QuizAttemptQuizID, attempt.QuizAttemptUserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &DuplicateAttemptError{Existing: existing}
		}
		return tx.Create(attempt).Error
	})
	if err == nil {
		return nil
	}

	var dup *DuplicateAttemptError
	if errors.As(err, &dup) {
		return dup
	}
	if IsUniqueViolation(err) {
		// transaksi sudah abort; baca ulang di luar tx
		existing, ferr := s.FindAttempt(ctx, attempt.QuizAttemptQuizID, attempt.QuizAttemptUserID)
		if ferr != nil {
			existing = nil
		}
		return &DuplicateAttemptError{Existing: existing}
	}
	return err
}

func (s *GormStore) ListAttempts(ctx context.Context, quizID, userID uuid.UUID) ([]model.QuizAttemptModel, error) {
	var rows []model.QuizAttemptModel
	if err := s.DB.WithContext(ctx).
		Where("quiz_attempt_quiz_id = ? AND quiz_attempt_user_id = ?", quizID, userID).
		Order("quiz_attempt_submitted_at DESC").
		Order("quiz_attempt_created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.QuizAttemptModel{}
	}
	return rows, nil
}

/* =======================
   Lectures (seed)
======================= */

func (s *GormStore) UpsertLecture(ctx context.Context, l *LectureSeed) error {
	row := lectureModel.LectureModel{
		LectureID:       l.ID,
		LectureCourseID: l.CourseID,
		LectureTitle:    l.Title,
	}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lecture_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"lecture_course_id", "lecture_title"}),
		}).
		Create(&row).Error
}
