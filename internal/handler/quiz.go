package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/ability-api/internal/apperror"
	"github.com/sakif/ability-api/internal/model"
)

type QuizService interface {
	RecordResult(ctx context.Context, uid string, quizID int64, average int, questionIDs []int64) (*model.QuizResult, error)
	History(ctx context.Context, uid string) ([]model.QuizResult, error)
	Questions(ctx context.Context, quizID int64) ([]model.Question, error)
}

// QuizHandler serves quiz results and the question bank.
type QuizHandler struct {
	quizzes QuizService
	logger  *slog.Logger
}

func NewQuizHandler(quizzes QuizService, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, logger: logger}
}

// QuizResultResponse is one entry of /result_history, with the five question
// ids flattened into numbered keys.
type QuizResultResponse struct {
	QuizID        int64 `json:"quiz_id"`
	Question1ID   int64 `json:"question1_id"`
	Question2ID   int64 `json:"question2_id"`
	Question3ID   int64 `json:"question3_id"`
	Question4ID   int64 `json:"question4_id"`
	Question5ID   int64 `json:"question5_id"`
	AverageResult int   `json:"average_result"`
}

func newQuizResultResponse(r model.QuizResult) QuizResultResponse {
	return QuizResultResponse{
		QuizID:        r.QuizID,
		Question1ID:   r.QuestionIDs[0],
		Question2ID:   r.QuestionIDs[1],
		Question3ID:   r.QuestionIDs[2],
		Question4ID:   r.QuestionIDs[3],
		Question5ID:   r.QuestionIDs[4],
		AverageResult: r.AverageResult,
	}
}

// HandleQuizUpdate records one quiz attempt.
//
// HTTP: POST /quiz_update
// BODY: {"uid": "...", "quizid": 2, "avg_result": 80, "questionids": [1, 2, 3, 4, 5]}
func (h *QuizHandler) HandleQuizUpdate(w http.ResponseWriter, r *http.Request) {
	var req QuizUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid quiz_update request", slog.String("error", err.Error()))
		writeError(w, h.logger, r, err)
		return
	}

	if _, err := h.quizzes.RecordResult(r.Context(), req.UID, *req.QuizID, *req.AvgResult, req.QuestionIDs); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Quiz update successful"})
}

// HandleResultHistory lists every quiz attempt of a uid.
// An unknown uid gets an empty list, not an error.
//
// HTTP: GET /result_history/{uid}
func (h *QuizHandler) HandleResultHistory(w http.ResponseWriter, r *http.Request) {
	results, err := h.quizzes.History(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	out := make([]QuizResultResponse, 0, len(results))
	for _, res := range results {
		out = append(out, newQuizResultResponse(res))
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

// HandleQuestions lists the question bank entries of one quiz.
//
// HTTP: GET /quiz_questions/{quizid}
func (h *QuizHandler) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "quizid")
	quizID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, h.logger, r, apperror.ValidationFailed("quizid", "quizid must be an integer"))
		return
	}

	questions, err := h.quizzes.Questions(r.Context(), quizID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}
