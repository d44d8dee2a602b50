package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"quizlive/internal/models"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

type joinRequest struct {
	Name   string `json:"name" validate:"required,max=50"`
	Avatar string `json:"avatar"`
	Color  string `json:"color"`
}

type answerRequest struct {
	QuestionID    uint `json:"question_id" validate:"required"`
	ParticipantID uint `json:"participant_id" validate:"required"`
	AnswerID      uint `json:"answer_id" validate:"required"`
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "quizID")
	if err != nil {
		http.Error(w, "Invalid quiz id", http.StatusBadRequest)
		return
	}

	session, err := h.service.CreateSession(quizID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session_id": session.ID,
		"code":       session.Code,
	})
}

// GetSession resolves a join code. Unknown codes answer null, not 404; a
// player typing a code that does not exist yet is a normal condition.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	summary, err := h.service.GetSessionByCode(code)
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(summary)
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.StartSession)
}

func (h *Handler) ShowResults(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ShowResults)
}

func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.NextQuestion)
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.EndSession)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(uint) error) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	if err := op(sessionID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) JoinSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	participant, err := h.service.JoinSession(sessionID, req.Name, req.Avatar, req.Color)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]uint{"participant_id": participant.ID})
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.SubmitAnswer(sessionID, req.QuestionID, req.ParticipantID, req.AnswerID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) GetCurrentQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	question, err := h.service.GetCurrentQuestion(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(question)
}

func (h *Handler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	participants, err := h.service.GetParticipants(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(participants)
}

func (h *Handler) GetResponses(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}
	questionID, err := strconv.ParseUint(r.URL.Query().Get("question_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid question id", http.StatusBadRequest)
		return
	}

	responses, err := h.service.GetResponsesForQuestion(sessionID, uint(questionID))
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(responses)
}

func (h *Handler) GetParticipantResponses(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}
	participantID, err := pathID(r, "participantID")
	if err != nil {
		http.Error(w, "Invalid participant id", http.StatusBadRequest)
		return
	}

	responses, err := h.service.GetParticipantResponses(participantID, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(responses)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	entries, err := h.service.GetLeaderboard(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(entries)
}

func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	return uint(id), err
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrQuizNotFound),
		errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrQuestionNotFound),
		errors.Is(err, models.ErrAnswerNotFound),
		errors.Is(err, models.ErrParticipantNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrDuplicateResponse):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrAnswerMismatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrSessionEnded):
		http.Error(w, err.Error(), http.StatusGone)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
