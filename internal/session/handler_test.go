package session_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"quizlive/internal/models"
	"quizlive/internal/quiz"
	"quizlive/internal/session"
)

func newTestRouter(t *testing.T) (*mux.Router, *session.Service, *quiz.Service) {
	t.Helper()
	svc, quizSvc := newTestEnv(t)
	handler := session.NewHandler(svc)

	router := mux.NewRouter()
	router.HandleFunc("/api/sessions/{code:[A-Za-z0-9]+}", handler.GetSession).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/start", handler.StartSession).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/results", handler.ShowResults).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/join", handler.JoinSession).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/answers", handler.SubmitAnswer).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/leaderboard", handler.GetLeaderboard).Methods("GET")
	return router, svc, quizSvc
}

func doJSON(t *testing.T, router *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJoinSessionHandler(t *testing.T) {
	router, svc, quizSvc := newTestRouter(t)
	detail := seedQuiz(t, quizSvc, 1)
	sess, _ := svc.CreateSession(detail.ID)

	rec := doJSON(t, router, "POST", fmt.Sprintf("/api/sessions/%d/join", sess.ID),
		`{"name":"Alice","avatar":"cat","color":"#f00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]uint
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["participant_id"] == 0 {
		t.Fatalf("expected participant id, got %v", resp)
	}
}

func TestJoinSessionHandlerValidation(t *testing.T) {
	router, svc, quizSvc := newTestRouter(t)
	detail := seedQuiz(t, quizSvc, 1)
	sess, _ := svc.CreateSession(detail.ID)

	longName := strings.Repeat("x", 51)
	rec := doJSON(t, router, "POST", fmt.Sprintf("/api/sessions/%d/join", sess.ID),
		fmt.Sprintf(`{"name":%q}`, longName))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a 51-char name, got %d", rec.Code)
	}

	rec = doJSON(t, router, "POST", fmt.Sprintf("/api/sessions/%d/join", sess.ID), `{"name":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an empty name, got %d", rec.Code)
	}
}

func TestJoinFinishedSessionHandler(t *testing.T) {
	router, svc, quizSvc := newTestRouter(t)
	detail := seedQuiz(t, quizSvc, 1)
	sess, _ := svc.CreateSession(detail.ID)
	svc.EndSession(sess.ID)

	rec := doJSON(t, router, "POST", fmt.Sprintf("/api/sessions/%d/join", sess.ID),
		`{"name":"Late"}`)
	if rec.Code != http.StatusGone {
		t.Fatalf("expected 410, got %d", rec.Code)
	}
}

func TestSubmitAnswerHandlerConflicts(t *testing.T) {
	router, svc, quizSvc := newTestRouter(t)
	detail := seedQuiz(t, quizSvc, 1)
	sess, _ := svc.CreateSession(detail.ID)
	pid := join(t, svc, sess.ID, "Alice")
	q := detail.Questions[0]

	body := fmt.Sprintf(`{"question_id":%d,"participant_id":%d,"answer_id":%d}`,
		q.ID, pid, q.Answers[0].ID)
	path := fmt.Sprintf("/api/sessions/%d/answers", sess.ID)

	// Not started yet.
	if rec := doJSON(t, router, "POST", path, body); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while waiting, got %d", rec.Code)
	}

	svc.StartSession(sess.ID)
	if rec := doJSON(t, router, "POST", path, body); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	// Double-tap.
	if rec := doJSON(t, router, "POST", path, body); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", rec.Code)
	}

	// Cross-question answer id.
	badBody := fmt.Sprintf(`{"question_id":%d,"participant_id":%d,"answer_id":99999}`, q.ID, pid)
	if rec := doJSON(t, router, "POST", path, badBody); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown answer, got %d", rec.Code)
	}
}

func TestGetSessionHandler(t *testing.T) {
	router, svc, quizSvc := newTestRouter(t)
	detail := seedQuiz(t, quizSvc, 2)
	sess, _ := svc.CreateSession(detail.ID)

	rec := doJSON(t, router, "GET", "/api/sessions/"+strings.ToLower(sess.Code), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summary models.SessionSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Code != sess.Code || summary.QuestionCount != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// Unknown codes answer null, not 404.
	rec = doJSON(t, router, "GET", "/api/sessions/NOPE42", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "null" {
		t.Fatalf("expected null body, got %q", rec.Body.String())
	}
}

func TestTransitionHandlerStatuses(t *testing.T) {
	router, svc, quizSvc := newTestRouter(t)
	detail := seedQuiz(t, quizSvc, 1)
	sess, _ := svc.CreateSession(detail.ID)

	if rec := doJSON(t, router, "POST", fmt.Sprintf("/api/sessions/%d/results", sess.ID), ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for results before start, got %d", rec.Code)
	}
	if rec := doJSON(t, router, "POST", fmt.Sprintf("/api/sessions/%d/start", sess.ID), ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for start, got %d", rec.Code)
	}
	if rec := doJSON(t, router, "POST", "/api/sessions/999999/start", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rec.Code)
	}
}

func TestLeaderboardHandler(t *testing.T) {
	router, svc, quizSvc := newTestRouter(t)
	detail := seedQuiz(t, quizSvc, 1)
	sess, _ := svc.CreateSession(detail.ID)
	pid := join(t, svc, sess.ID, "Alice")
	svc.StartSession(sess.ID)
	submit(t, svc, sess.ID, detail.Questions[0], pid, true)
	svc.EndSession(sess.ID)

	rec := doJSON(t, router, "GET", fmt.Sprintf("/api/sessions/%d/leaderboard", sess.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var board []models.LeaderboardEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(board) != 1 || board[0].Score != 1 || board[0].Rank != 1 {
		t.Fatalf("unexpected board: %+v", board)
	}
}
