package models

import (
	"time"
)

type SessionStatus string

const (
	StatusWaiting        SessionStatus = "waiting"
	StatusActive         SessionStatus = "active"
	StatusShowingResults SessionStatus = "showing_results"
	StatusFinished       SessionStatus = "finished"
)

// Session is one game instance of a quiz. Status only moves through
// waiting -> active -> showing_results -> active ... -> finished, except
// EndSession which forces finished from anywhere.
type Session struct {
	ID                   uint          `json:"id" gorm:"primaryKey"`
	QuizID               uint          `json:"quiz_id" gorm:"index;not null"`
	Code                 string        `json:"code" gorm:"uniqueIndex;not null"`
	Status               SessionStatus `json:"status" gorm:"not null"`
	CurrentQuestionIndex int           `json:"current_question_index" gorm:"not null"`
	CreatedAt            time.Time     `json:"created_at"`
}

type Participant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SessionID uint      `json:"session_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Avatar    string    `json:"avatar"`
	Color     string    `json:"color"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Response is append-only. The composite unique index is the authoritative
// guard for the one-answer-per-question invariant under concurrent submits.
type Response struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	SessionID     uint      `json:"session_id" gorm:"uniqueIndex:idx_responses_once;index;not null"`
	QuestionID    uint      `json:"question_id" gorm:"uniqueIndex:idx_responses_once;not null"`
	ParticipantID uint      `json:"participant_id" gorm:"uniqueIndex:idx_responses_once;index;not null"`
	AnswerID      uint      `json:"answer_id" gorm:"not null"`
	AnsweredAt    time.Time `json:"answered_at"`
}
