package models

import "errors"

var (
	// ErrQuizNotFound indicates the referenced quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound indicates the referenced session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrQuestionNotFound indicates the referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAnswerNotFound indicates the referenced answer does not exist.
	ErrAnswerNotFound = errors.New("answer not found")
	// ErrParticipantNotFound indicates the referenced participant does not exist.
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrInvalidState is returned when a transition is attempted from a
	// session status that does not permit it.
	ErrInvalidState = errors.New("operation not allowed in current session state")
	// ErrSessionEnded is returned when joining a finished session.
	ErrSessionEnded = errors.New("session has ended")
	// ErrDuplicateResponse is returned when a participant has already
	// answered the question in this session.
	ErrDuplicateResponse = errors.New("already answered this question")
	// ErrAnswerMismatch is returned when the answer does not belong to the
	// stated question.
	ErrAnswerMismatch = errors.New("answer does not belong to this question")
	// ErrCodeGenerationExhausted is returned after the bounded number of
	// join-code draws all collided.
	ErrCodeGenerationExhausted = errors.New("failed to generate unique session code")

	// ErrInvalidQuizContent is returned when a question has fewer than two
	// answers or none marked correct.
	ErrInvalidQuizContent = errors.New("question must have at least two answers and one marked correct")
	// ErrNotQuizOwner is returned when an editor is not the quiz creator.
	ErrNotQuizOwner = errors.New("only the quiz creator can modify it")
)
