package models

import (
	"time"
)

// Quiz is the authoring root: a titled, ordered list of questions.
// Questions and answers are owned rows, cascade-deleted with the quiz.
type Quiz struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	CreatorID   uint       `json:"creator_id" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at"`
	Questions   []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

type Question struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	QuizID   uint     `json:"quiz_id" gorm:"index;not null"`
	Text     string   `json:"text" gorm:"not null"`
	Position int      `json:"order" gorm:"not null"`
	ImageRef string   `json:"image_ref"`
	AudioRef string   `json:"audio_ref"`
	Answers  []Answer `json:"answers,omitempty" gorm:"foreignKey:QuestionID"`
}

type Answer struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	Text       string `json:"text" gorm:"not null"`
	IsCorrect  bool   `json:"is_correct"`
	Position   int    `json:"order" gorm:"not null"`
}

// QuizInput is the authoring payload for create and update. Question and
// answer order is taken from slice position, never from the client.
type QuizInput struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Questions   []QuestionInput `json:"questions" validate:"dive"`
}

type QuestionInput struct {
	Text     string        `json:"text" validate:"required"`
	ImageRef string        `json:"image_ref"`
	AudioRef string        `json:"audio_ref"`
	Answers  []AnswerInput `json:"answers" validate:"min=2,dive"`
}

type AnswerInput struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}
