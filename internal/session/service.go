package session

import (
	"errors"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"quizlive/internal/models"
	"quizlive/pkg/blob"
	"quizlive/pkg/cache"
)

// Broadcaster pushes session events to connected clients. Delivery is best
// effort; clients polling the read endpoints see the same state.
type Broadcaster interface {
	Broadcast(code string, event string, data interface{})
}

const (
	defaultCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultCodeLength   = 6
	defaultCodeAttempts = 100
)

type Service struct {
	repo  *Repository
	cache *cache.RedisCache
	hub   Broadcaster
	blob  blob.Store

	codeAlphabet string
	codeLength   int
	codeAttempts int
}

func NewService(repo *Repository, redisCache *cache.RedisCache, hub Broadcaster, blobStore blob.Store) *Service {
	return &Service{
		repo:         repo,
		cache:        redisCache,
		hub:          hub,
		blob:         blobStore,
		codeAlphabet: defaultCodeAlphabet,
		codeLength:   defaultCodeLength,
		codeAttempts: defaultCodeAttempts,
	}
}

// SetCodePolicy overrides the join-code alphabet, length and attempt cap.
// Shrinking the code space makes generation exhaustion reachable.
func (s *Service) SetCodePolicy(alphabet string, length, attempts int) {
	s.codeAlphabet = alphabet
	s.codeLength = length
	s.codeAttempts = attempts
}

func (s *Service) generateCode() string {
	code := make([]byte, s.codeLength)
	for i := range code {
		code[i] = s.codeAlphabet[rand.Intn(len(s.codeAlphabet))]
	}
	return string(code)
}

// CreateSession opens a new game instance of a quiz in the waiting state.
// Codes are drawn at random and inserted against the unique index; a
// collision triggers a redraw, bounded so a full code space cannot spin
// forever.
func (s *Service) CreateSession(quizID uint) (*models.Session, error) {
	quiz, err := s.repo.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, models.ErrQuizNotFound
	}

	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		session := models.Session{
			QuizID:               quizID,
			Code:                 s.generateCode(),
			Status:               models.StatusWaiting,
			CurrentQuestionIndex: 0,
			CreatedAt:            time.Now(),
		}
		err := s.repo.CreateSession(&session)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("Session code %s collided, retrying", session.Code)
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Printf("Created session %d with code %s for quiz %d", session.ID, session.Code, quizID)
		return &session, nil
	}

	return nil, models.ErrCodeGenerationExhausted
}

// GetSessionByCode resolves a join code, case-insensitively, to the session
// summary. Returns (nil, nil) for an unknown code.
func (s *Service) GetSessionByCode(code string) (*models.SessionSummary, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	if s.cache != nil {
		if summary, err := s.cache.GetSessionSummary(code); err == nil {
			return summary, nil
		}
	}

	session, err := s.repo.GetSessionByCode(code)
	if err != nil || session == nil {
		return nil, err
	}

	summary, err := s.buildSummary(session)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetSessionSummary(summary); err != nil {
			log.Printf("Error caching session %s: %v", code, err)
		}
	}
	return summary, nil
}

func (s *Service) buildSummary(session *models.Session) (*models.SessionSummary, error) {
	quiz, err := s.repo.GetQuiz(session.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, models.ErrQuizNotFound
	}
	count, err := s.repo.CountQuestions(session.QuizID)
	if err != nil {
		return nil, err
	}

	return &models.SessionSummary{
		ID:                   session.ID,
		QuizID:               session.QuizID,
		Code:                 session.Code,
		Status:               session.Status,
		CurrentQuestionIndex: session.CurrentQuestionIndex,
		CreatedAt:            session.CreatedAt,
		QuizTitle:            quiz.Title,
		QuizDescription:      quiz.Description,
		QuestionCount:        int(count),
	}, nil
}

func (s *Service) getSession(sessionID uint) (*models.Session, error) {
	session, err := s.repo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, models.ErrSessionNotFound
	}
	return session, nil
}

// StartSession moves waiting -> active with the first question live.
func (s *Service) StartSession(sessionID uint) error {
	session, err := s.getSession(sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.StatusWaiting {
		return models.ErrInvalidState
	}

	if err := s.repo.UpdateSessionState(sessionID, models.StatusActive, 0); err != nil {
		return err
	}
	s.afterTransition(session.Code, models.StatusActive, 0)
	return nil
}

// ShowResults freezes the current question's response window:
// active -> showing_results, index unchanged.
func (s *Service) ShowResults(sessionID uint) error {
	session, err := s.getSession(sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.StatusActive {
		return models.ErrInvalidState
	}

	if err := s.repo.UpdateSessionState(sessionID, models.StatusShowingResults, session.CurrentQuestionIndex); err != nil {
		return err
	}
	s.afterTransition(session.Code, models.StatusShowingResults, session.CurrentQuestionIndex)
	s.broadcastResults(session)
	return nil
}

// NextQuestion advances from showing_results. On the last question the
// session finishes with the index left pointing at it; otherwise the next
// question goes live.
func (s *Service) NextQuestion(sessionID uint) error {
	session, err := s.getSession(sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.StatusShowingResults {
		return models.ErrInvalidState
	}

	total, err := s.repo.CountQuestions(session.QuizID)
	if err != nil {
		return err
	}

	if session.CurrentQuestionIndex+1 >= int(total) {
		if err := s.repo.UpdateSessionState(sessionID, models.StatusFinished, session.CurrentQuestionIndex); err != nil {
			return err
		}
		s.afterTransition(session.Code, models.StatusFinished, session.CurrentQuestionIndex)
		s.broadcastLeaderboard(sessionID, session.Code)
		return nil
	}

	nextIndex := session.CurrentQuestionIndex + 1
	if err := s.repo.UpdateSessionState(sessionID, models.StatusActive, nextIndex); err != nil {
		return err
	}
	s.afterTransition(session.Code, models.StatusActive, nextIndex)
	return nil
}

// EndSession force-finishes from any state. This is the host's early
// termination switch and the one transition outside the normal graph.
func (s *Service) EndSession(sessionID uint) error {
	session, err := s.getSession(sessionID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateSessionState(sessionID, models.StatusFinished, session.CurrentQuestionIndex); err != nil {
		return err
	}
	s.afterTransition(session.Code, models.StatusFinished, session.CurrentQuestionIndex)
	s.broadcastLeaderboard(sessionID, session.Code)
	return nil
}

// JoinSession adds a participant. Late joins are allowed in every state but
// finished; a late joiner simply has no responses for passed questions.
func (s *Service) JoinSession(sessionID uint, name, avatar, color string) (*models.Participant, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.StatusFinished {
		return nil, models.ErrSessionEnded
	}

	participant := models.Participant{
		SessionID: sessionID,
		Name:      strings.TrimSpace(name),
		Avatar:    avatar,
		Color:     color,
		JoinedAt:  time.Now(),
	}
	if err := s.repo.CreateParticipant(&participant); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(session.Code, "participant_joined", participant)
	}
	return &participant, nil
}

// SubmitAnswer records one response per participant per question. Only legal
// while the question is actively open.
func (s *Service) SubmitAnswer(sessionID, questionID, participantID, answerID uint) error {
	session, err := s.getSession(sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.StatusActive {
		return models.ErrInvalidState
	}

	participant, err := s.repo.GetParticipant(participantID)
	if err != nil {
		return err
	}
	if participant == nil || participant.SessionID != sessionID {
		return models.ErrParticipantNotFound
	}

	question, err := s.repo.GetQuestion(questionID)
	if err != nil {
		return err
	}
	if question == nil {
		return models.ErrQuestionNotFound
	}

	answer, err := s.repo.GetAnswer(answerID)
	if err != nil {
		return err
	}
	if answer == nil {
		return models.ErrAnswerNotFound
	}
	if answer.QuestionID != questionID {
		return models.ErrAnswerMismatch
	}

	response := models.Response{
		SessionID:     sessionID,
		QuestionID:    questionID,
		ParticipantID: participantID,
		AnswerID:      answerID,
		AnsweredAt:    time.Now(),
	}
	if err := s.repo.InsertResponse(&response); err != nil {
		return err
	}

	if s.hub != nil {
		count, err := s.repo.CountResponsesForQuestion(sessionID, questionID)
		if err != nil {
			log.Printf("Error counting responses for session %d: %v", sessionID, err)
		} else {
			s.hub.Broadcast(session.Code, "answer_count", map[string]interface{}{
				"question_id": questionID,
				"count":       count,
			})
		}
	}
	return nil
}

// GetCurrentQuestion resolves questions[currentQuestionIndex] of the
// session's quiz with its answers and media URLs. Returns (nil, nil) when
// the session is unknown, has no questions, or the index is out of range.
func (s *Service) GetCurrentQuestion(sessionID uint) (*models.QuestionDetail, error) {
	session, err := s.repo.GetSessionByID(sessionID)
	if err != nil || session == nil {
		return nil, err
	}

	questions, err := s.repo.GetQuestionsOrdered(session.QuizID)
	if err != nil {
		return nil, err
	}
	if session.CurrentQuestionIndex < 0 || session.CurrentQuestionIndex >= len(questions) {
		return nil, nil
	}
	question := questions[session.CurrentQuestionIndex]

	answers, err := s.repo.GetAnswersForQuestion(question.ID)
	if err != nil {
		return nil, err
	}
	imageURL, err := s.blob.ResolveURL(question.ImageRef)
	if err != nil {
		return nil, err
	}
	audioURL, err := s.blob.ResolveURL(question.AudioRef)
	if err != nil {
		return nil, err
	}

	return &models.QuestionDetail{
		ID:       question.ID,
		Text:     question.Text,
		Position: question.Position,
		ImageRef: question.ImageRef,
		AudioRef: question.AudioRef,
		ImageURL: imageURL,
		AudioURL: audioURL,
		Answers:  answers,
	}, nil
}

func (s *Service) GetParticipants(sessionID uint) ([]models.Participant, error) {
	return s.repo.GetParticipants(sessionID)
}

func (s *Service) GetResponsesForQuestion(sessionID, questionID uint) ([]models.ResponseDetail, error) {
	return s.repo.GetResponsesForQuestion(sessionID, questionID)
}

func (s *Service) GetParticipantResponses(participantID, sessionID uint) ([]models.ParticipantResponse, error) {
	return s.repo.GetParticipantResponses(participantID, sessionID)
}

// GetLeaderboard derives the ranked standings from the response ledger.
// Score is the count of correct answers across the whole session; there is
// no persisted score anywhere. Sessions ended early rank on whatever
// responses exist. Unknown sessions yield an empty board.
func (s *Service) GetLeaderboard(sessionID uint) ([]models.LeaderboardEntry, error) {
	session, err := s.repo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return []models.LeaderboardEntry{}, nil
	}

	entries, err := s.repo.GetScores(sessionID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})

	// Dense competition ranking: ties share a rank, the sequence skips
	// after a tie group ([5,5,3] -> [1,1,3]).
	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}

	if s.cache != nil {
		if err := s.cache.SetLeaderboard(session.Code, entries); err != nil {
			log.Printf("Error caching leaderboard for session %d: %v", sessionID, err)
		}
	}
	return entries, nil
}

func (s *Service) afterTransition(code string, status models.SessionStatus, questionIndex int) {
	if s.cache != nil {
		if err := s.cache.InvalidateSession(code); err != nil {
			log.Printf("Error invalidating session cache %s: %v", code, err)
		}
	}
	if s.hub != nil {
		s.hub.Broadcast(code, "session_state", map[string]interface{}{
			"status":                 status,
			"current_question_index": questionIndex,
		})
	}
}

func (s *Service) broadcastResults(session *models.Session) {
	if s.hub == nil {
		return
	}
	questions, err := s.repo.GetQuestionsOrdered(session.QuizID)
	if err != nil || session.CurrentQuestionIndex >= len(questions) {
		return
	}
	questionID := questions[session.CurrentQuestionIndex].ID
	details, err := s.repo.GetResponsesForQuestion(session.ID, questionID)
	if err != nil {
		log.Printf("Error loading results for session %d: %v", session.ID, err)
		return
	}
	s.hub.Broadcast(session.Code, "question_results", map[string]interface{}{
		"question_id": questionID,
		"responses":   details,
	})
}

func (s *Service) broadcastLeaderboard(sessionID uint, code string) {
	if s.hub == nil && s.cache == nil {
		return
	}
	entries, err := s.GetLeaderboard(sessionID)
	if err != nil {
		log.Printf("Error computing leaderboard for session %d: %v", sessionID, err)
		return
	}
	if s.hub != nil {
		s.hub.Broadcast(code, "leaderboard", entries)
	}
}
