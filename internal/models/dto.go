package models

import "time"

// QuizDetail is the full authoring view: quiz with ordered questions and
// answers, blob refs resolved to URLs.
type QuizDetail struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
	Questions   []QuestionDetail `json:"questions"`
}

type QuestionDetail struct {
	ID       uint     `json:"id"`
	Text     string   `json:"text"`
	Position int      `json:"order"`
	ImageRef string   `json:"image_ref,omitempty"`
	AudioRef string   `json:"audio_ref,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	AudioURL string   `json:"audio_url,omitempty"`
	Answers  []Answer `json:"answers"`
}

// SessionSummary is the lobby/status view resolved from a join code.
type SessionSummary struct {
	ID                   uint          `json:"id"`
	QuizID               uint          `json:"quiz_id"`
	Code                 string        `json:"code"`
	Status               SessionStatus `json:"status"`
	CurrentQuestionIndex int           `json:"current_question_index"`
	CreatedAt            time.Time     `json:"created_at"`
	QuizTitle            string        `json:"quiz_title"`
	QuizDescription      string        `json:"quiz_description"`
	QuestionCount        int           `json:"question_count"`
}

// ResponseDetail joins a response with participant display fields and the
// chosen answer, for the host's live tally view.
type ResponseDetail struct {
	ID              uint      `json:"id"`
	SessionID       uint      `json:"session_id"`
	QuestionID      uint      `json:"question_id"`
	ParticipantID   uint      `json:"participant_id"`
	AnswerID        uint      `json:"answer_id"`
	AnsweredAt      time.Time `json:"answered_at"`
	ParticipantName string    `json:"participant_name"`
	Avatar          string    `json:"avatar"`
	Color           string    `json:"color"`
	AnswerText      string    `json:"answer_text"`
	IsCorrect       bool      `json:"is_correct"`
}

// ParticipantResponse is a participant's own answer history for a session.
type ParticipantResponse struct {
	QuestionID uint      `json:"question_id"`
	AnswerID   uint      `json:"answer_id"`
	AnsweredAt time.Time `json:"answered_at"`
}

// LeaderboardEntry carries the cumulative score (count of correct answers)
// and a dense competition rank: ties share a rank, the sequence skips after
// a tie group.
type LeaderboardEntry struct {
	ParticipantID uint   `json:"participant_id"`
	Name          string `json:"name"`
	Score         int    `json:"score"`
	Rank          int    `json:"rank"`
}
