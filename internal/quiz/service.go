package quiz

import (
	"fmt"
	"log"

	"quizlive/internal/models"
	"quizlive/pkg/blob"
)

type Service struct {
	repo *Repository
	blob blob.Store
}

func NewService(repo *Repository, blobStore blob.Store) *Service {
	return &Service{
		repo: repo,
		blob: blobStore,
	}
}

// CreateQuiz inserts a quiz with its question/answer tree as one unit and
// returns the new quiz id. Media refs are stored verbatim.
func (s *Service) CreateQuiz(creatorID uint, input models.QuizInput) (uint, error) {
	if err := validateContent(input.Questions); err != nil {
		return 0, err
	}

	quiz := models.Quiz{
		Title:       input.Title,
		Description: input.Description,
		CreatorID:   creatorID,
	}
	if err := s.repo.CreateQuizContent(&quiz, input.Questions); err != nil {
		log.Printf("Error creating quiz: %v", err)
		return 0, err
	}
	log.Printf("Created quiz %d with %d questions", quiz.ID, len(input.Questions))
	return quiz.ID, nil
}

// UpdateQuiz replaces the question/answer tree wholesale. Old question and
// answer ids are gone afterwards; sessions are always started fresh against
// the current content, so stale ids are never resurrected.
func (s *Service) UpdateQuiz(editorID, quizID uint, input models.QuizInput) error {
	quiz, err := s.repo.GetQuizByID(quizID)
	if err != nil {
		return err
	}
	if quiz == nil {
		return models.ErrQuizNotFound
	}
	if quiz.CreatorID != editorID {
		return models.ErrNotQuizOwner
	}
	if err := validateContent(input.Questions); err != nil {
		return err
	}

	if err := s.repo.ReplaceQuizContent(quizID, input.Title, input.Description, input.Questions); err != nil {
		log.Printf("Error updating quiz %d: %v", quizID, err)
		return err
	}
	return nil
}

func (s *Service) DeleteQuiz(editorID, quizID uint) error {
	quiz, err := s.repo.GetQuizByID(quizID)
	if err != nil {
		return err
	}
	if quiz == nil {
		return models.ErrQuizNotFound
	}
	if quiz.CreatorID != editorID {
		return models.ErrNotQuizOwner
	}

	if err := s.repo.DeleteQuizCascade(quizID); err != nil {
		log.Printf("Error deleting quiz %d: %v", quizID, err)
		return err
	}
	log.Printf("Deleted quiz %d", quizID)
	return nil
}

// GetQuiz returns the full quiz view with media refs resolved to URLs, or
// (nil, nil) when the quiz does not exist.
func (s *Service) GetQuiz(quizID uint) (*models.QuizDetail, error) {
	quiz, err := s.repo.GetQuizWithContent(quizID)
	if err != nil || quiz == nil {
		return nil, err
	}

	detail := models.QuizDetail{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		CreatedAt:   quiz.CreatedAt,
		Questions:   make([]models.QuestionDetail, len(quiz.Questions)),
	}
	for i, q := range quiz.Questions {
		imageURL, err := s.blob.ResolveURL(q.ImageRef)
		if err != nil {
			return nil, err
		}
		audioURL, err := s.blob.ResolveURL(q.AudioRef)
		if err != nil {
			return nil, err
		}
		detail.Questions[i] = models.QuestionDetail{
			ID:       q.ID,
			Text:     q.Text,
			Position: q.Position,
			ImageRef: q.ImageRef,
			AudioRef: q.AudioRef,
			ImageURL: imageURL,
			AudioURL: audioURL,
			Answers:  q.Answers,
		}
	}
	return &detail, nil
}

func (s *Service) ListQuizzes() ([]models.Quiz, error) {
	return s.repo.ListQuizzes()
}

// GenerateUploadURL issues a fresh blob ref and the URL to upload it to.
func (s *Service) GenerateUploadURL() (string, string, error) {
	return s.blob.GenerateUploadURL()
}

// validateContent enforces what the request validator cannot: every question
// needs at least one answer marked correct, and at least two answers overall.
func validateContent(questions []models.QuestionInput) error {
	for i, q := range questions {
		if len(q.Answers) < 2 {
			return fmt.Errorf("question %d: %w", i, models.ErrInvalidQuizContent)
		}
		hasCorrect := false
		for _, a := range q.Answers {
			if a.IsCorrect {
				hasCorrect = true
				break
			}
		}
		if !hasCorrect {
			return fmt.Errorf("question %d: %w", i, models.ErrInvalidQuizContent)
		}
	}
	return nil
}
