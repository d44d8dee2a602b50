package session

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"quizlive/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSessionByID returns (nil, nil) when the session does not exist.
func (r *Repository) GetSessionByID(sessionID uint) (*models.Session, error) {
	var session models.Session
	err := r.db.First(&session, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("Error getting session %d: %v", sessionID, err)
		return nil, err
	}
	return &session, nil
}

func (r *Repository) GetSessionByCode(code string) (*models.Session, error) {
	var session models.Session
	err := r.db.Where("code = ?", code).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("Error getting session by code %s: %v", code, err)
		return nil, err
	}
	return &session, nil
}

// CreateSession inserts the row as-is. A gorm.ErrDuplicatedKey from the
// unique index on code is passed through for the caller's retry loop.
func (r *Repository) CreateSession(session *models.Session) error {
	return r.db.Create(session).Error
}

func (r *Repository) UpdateSessionState(sessionID uint, status models.SessionStatus, questionIndex int) error {
	return r.db.Model(&models.Session{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"status":                 status,
			"current_question_index": questionIndex,
		}).Error
}

func (r *Repository) GetQuiz(quizID uint) (*models.Quiz, error) {
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

func (r *Repository) CountQuestions(quizID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

func (r *Repository) GetQuestionsOrdered(quizID uint) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.Where("quiz_id = ?", quizID).Order("position ASC").Find(&questions).Error
	if err != nil {
		log.Printf("Error getting questions for quiz %d: %v", quizID, err)
		return nil, err
	}
	return questions, nil
}

func (r *Repository) GetQuestion(questionID uint) (*models.Question, error) {
	var question models.Question
	err := r.db.First(&question, questionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *Repository) GetAnswer(answerID uint) (*models.Answer, error) {
	var answer models.Answer
	err := r.db.First(&answer, answerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *Repository) GetAnswersForQuestion(questionID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.Where("question_id = ?", questionID).Order("position ASC").Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *Repository) CreateParticipant(participant *models.Participant) error {
	return r.db.Create(participant).Error
}

func (r *Repository) GetParticipant(participantID uint) (*models.Participant, error) {
	var participant models.Participant
	err := r.db.First(&participant, participantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *Repository) GetParticipants(sessionID uint) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.Where("session_id = ?", sessionID).Order("joined_at ASC, id ASC").Find(&participants).Error
	if err != nil {
		log.Printf("Error getting participants for session %d: %v", sessionID, err)
		return nil, err
	}
	return participants, nil
}

// InsertResponse records one response per (session, question, participant).
// The check and insert run in one transaction; the composite unique index is
// the authoritative guard if two submits race past the check.
func (r *Repository) InsertResponse(response *models.Response) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Response{}).
			Where("session_id = ? AND question_id = ? AND participant_id = ?",
				response.SessionID, response.QuestionID, response.ParticipantID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return models.ErrDuplicateResponse
		}

		if err := tx.Create(response).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.ErrDuplicateResponse
			}
			return err
		}
		return nil
	})
}

func (r *Repository) CountResponsesForQuestion(sessionID, questionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Response{}).
		Where("session_id = ? AND question_id = ?", sessionID, questionID).
		Count(&count).Error
	return count, err
}

func (r *Repository) GetResponsesForQuestion(sessionID, questionID uint) ([]models.ResponseDetail, error) {
	var details []models.ResponseDetail

	err := r.db.Raw(`
		SELECT r.id, r.session_id, r.question_id, r.participant_id, r.answer_id, r.answered_at,
		       p.name AS participant_name, p.avatar, p.color,
		       a.text AS answer_text, a.is_correct
		FROM responses r
		JOIN participants p ON p.id = r.participant_id
		JOIN answers a ON a.id = r.answer_id
		WHERE r.session_id = ? AND r.question_id = ?
		ORDER BY r.answered_at ASC, r.id ASC
	`, sessionID, questionID).Scan(&details).Error

	if err != nil {
		log.Printf("Error getting responses for session %d question %d: %v", sessionID, questionID, err)
		return nil, err
	}
	return details, nil
}

func (r *Repository) GetParticipantResponses(participantID, sessionID uint) ([]models.ParticipantResponse, error) {
	var responses []models.ParticipantResponse
	err := r.db.Model(&models.Response{}).
		Select("question_id, answer_id, answered_at").
		Where("participant_id = ? AND session_id = ?", participantID, sessionID).
		Order("answered_at ASC, id ASC").
		Scan(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetScores counts correct responses per participant across the whole
// session. Participants without responses score zero via the left join.
func (r *Repository) GetScores(sessionID uint) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry

	err := r.db.Raw(`
		SELECT p.id AS participant_id, p.name,
		       COALESCE(SUM(CASE WHEN a.is_correct THEN 1 ELSE 0 END), 0) AS score
		FROM participants p
		LEFT JOIN responses r ON r.participant_id = p.id AND r.session_id = p.session_id
		LEFT JOIN answers a ON a.id = r.answer_id
		WHERE p.session_id = ?
		GROUP BY p.id, p.name
	`, sessionID).Scan(&entries).Error

	if err != nil {
		log.Printf("Error getting scores for session %d: %v", sessionID, err)
		return nil, err
	}
	return entries, nil
}
