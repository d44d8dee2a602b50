package quiz

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"quizlive/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateQuizContent inserts the quiz and its full question/answer tree in one
// transaction. Positions come from slice order.
func (r *Repository) CreateQuizContent(quiz *models.Quiz, questions []models.QuestionInput) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		quiz.CreatedAt = time.Now()
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		return insertQuestions(tx, quiz.ID, questions)
	})
}

func insertQuestions(tx *gorm.DB, quizID uint, questions []models.QuestionInput) error {
	for i, q := range questions {
		question := models.Question{
			QuizID:   quizID,
			Text:     q.Text,
			Position: i,
			ImageRef: q.ImageRef,
			AudioRef: q.AudioRef,
		}
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for j, a := range q.Answers {
			answer := models.Answer{
				QuestionID: question.ID,
				Text:       a.Text,
				IsCorrect:  a.IsCorrect,
				Position:   j,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// ReplaceQuizContent is the full-replace update: every existing question and
// answer for the quiz is deleted, then the new tree is inserted fresh.
func (r *Repository) ReplaceQuizContent(quizID uint, title, description string, questions []models.QuestionInput) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":       title,
			"description": description,
		}
		if err := tx.Model(&models.Quiz{}).Where("id = ?", quizID).Updates(updates).Error; err != nil {
			return err
		}

		if err := deleteQuizContent(tx, quizID); err != nil {
			return err
		}
		return insertQuestions(tx, quizID, questions)
	})
}

func deleteQuizContent(tx *gorm.DB, quizID uint) error {
	var questionIDs []uint
	if err := tx.Model(&models.Question{}).Where("quiz_id = ?", quizID).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if len(questionIDs) > 0 {
		if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", questionIDs).Delete(&models.Question{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteQuizCascade removes the quiz and every dependent row: questions,
// answers, sessions, participants and responses. One transaction, so no
// observer ever sees a half-deleted quiz.
func (r *Repository) DeleteQuizCascade(quizID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var sessionIDs []uint
		if err := tx.Model(&models.Session{}).Where("quiz_id = ?", quizID).Pluck("id", &sessionIDs).Error; err != nil {
			return err
		}
		if len(sessionIDs) > 0 {
			if err := tx.Where("session_id IN ?", sessionIDs).Delete(&models.Response{}).Error; err != nil {
				return err
			}
			if err := tx.Where("session_id IN ?", sessionIDs).Delete(&models.Participant{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", sessionIDs).Delete(&models.Session{}).Error; err != nil {
				return err
			}
		}

		if err := deleteQuizContent(tx, quizID); err != nil {
			return err
		}
		return tx.Delete(&models.Quiz{}, quizID).Error
	})
}

// GetQuizByID returns (nil, nil) when the quiz does not exist.
func (r *Repository) GetQuizByID(quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.First(&quiz, quizID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("Error getting quiz %d: %v", quizID, err)
		return nil, err
	}
	return &quiz, nil
}

// GetQuizWithContent loads the quiz with questions and answers in display
// order. Returns (nil, nil) when the quiz does not exist.
func (r *Repository) GetQuizWithContent(quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&quiz, quizID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("Error getting quiz %d: %v", quizID, err)
		return nil, err
	}
	return &quiz, nil
}

func (r *Repository) ListQuizzes() ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.db.Order("created_at DESC, id DESC").Find(&quizzes).Error
	if err != nil {
		log.Printf("Error listing quizzes: %v", err)
		return nil, err
	}
	return quizzes, nil
}
