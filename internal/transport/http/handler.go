package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizverse-service/internal/app"
	"quizverse-service/internal/domain"
)

// Handler exposes the attempt lifecycle and leaderboard over JSON.
type Handler struct {
	service *app.AttemptService
	auth    Authenticator
}

func NewHandler(service *app.AttemptService, auth Authenticator) *Handler {
	return &Handler{service: service, auth: auth}
}

// Register wires the routes onto the mux. Paths mirror the public API:
// attempts are started against a quiz, submitted by id, and ranked per quiz.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/attempts/{quizId}", h.startAttempt)
	mux.HandleFunc("PUT /api/attempts/{id}", h.submitAttempt)
	mux.HandleFunc("GET /api/attempts/{id}", h.getAttempt)
	mux.HandleFunc("GET /api/attempts/user/{userId}", h.listStudentAttempts)
	mux.HandleFunc("GET /api/attempts", h.listOwnerAttempts)
	mux.HandleFunc("GET /api/attempts/leaderboard/{quizId}", h.leaderboard)
}

type answerPayload struct {
	QuestionID     string `json:"questionId"`
	SelectedOption int    `json:"selectedOption"`
}

type submitPayload struct {
	Answers   []answerPayload `json:"answers"`
	TimeTaken int             `json:"timeTaken"`
}

// attemptResponse flattens the attempt snapshot with its derived fields so
// clients never recompute scores themselves.
type attemptResponse struct {
	domain.Attempt
	TotalQuestions int    `json:"totalQuestions"`
	CorrectAnswers int    `json:"correctAnswers"`
	ScoreDisplay   string `json:"scoreDisplay"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (h *Handler) startAttempt(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	attempt, err := h.service.StartAttempt(r.Context(), r.PathValue("quizId"), identity.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, attempt)
}

func (h *Handler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	answers := make([]domain.Answer, 0, len(payload.Answers))
	for _, ans := range payload.Answers {
		answers = append(answers, domain.Answer{QuestionID: ans.QuestionID, SelectedOption: ans.SelectedOption})
	}

	result, err := h.service.SubmitAttempt(r.Context(), r.PathValue("id"), identity.UserID, answers, payload.TimeTaken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attemptResponse{
		Attempt:        result.Attempt,
		TotalQuestions: result.TotalQuestions,
		CorrectAnswers: result.CorrectAnswers,
		ScoreDisplay:   result.ScoreDisplay,
	})
}

func (h *Handler) getAttempt(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	attempt, err := h.service.GetAttempt(r.Context(), r.PathValue("id"), identity.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (h *Handler) listStudentAttempts(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.identity(w, r); !ok {
		return
	}
	summaries, err := h.service.ListAttemptsForStudent(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) listOwnerAttempts(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	summaries, err := h.service.ListAttemptsForQuizOwner(r.Context(), identity.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.identity(w, r); !ok {
		return
	}
	lb, err := h.service.Leaderboard(r.Context(), r.PathValue("quizId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	identity, err := h.auth.Authenticate(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "authentication required"})
		return domain.Identity{}, false
	}
	return identity, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "quiz not found"})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "unauthorized"})
	case errors.Is(err, domain.ErrAttemptCompleted):
		writeJSON(w, http.StatusConflict, errorResponse{Message: "attempt already completed"})
	case errors.Is(err, domain.ErrUnavailable):
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "storage unavailable"})
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
