package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/exercisetracker/internal/exercise"
)

// ExerciseServiceInterface はエクササイズハンドラーが必要とするサービスインターフェース。
type ExerciseServiceInterface interface {
	// AddExercise はユーザーにエクササイズを追加する。
	AddExercise(ctx context.Context, userID string, in exercise.AddInput) (*exercise.AddResult, error)
	// GetLog はユーザーのエクササイズログを取得する。
	GetLog(ctx context.Context, userID string, q exercise.LogQuery) (*exercise.LogResult, error)
}

// ExerciseHandler はエクササイズのHTTPハンドラー。
type ExerciseHandler struct {
	service ExerciseServiceInterface
}

// NewExerciseHandler はExerciseHandlerを生成する。
func NewExerciseHandler(service ExerciseServiceInterface) *ExerciseHandler {
	return &ExerciseHandler{
		service: service,
	}
}

// AddExercise はエクササイズの追加を処理する。
// POST /api/users/:id/exercises
func (h *ExerciseHandler) AddExercise(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	values := formValues(w, r)

	result, err := h.service.AddExercise(r.Context(), userID, exercise.AddInput{
		Description: values["description"],
		Duration:    values["duration"],
		Date:        values["date"],
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toExerciseResponse(result.User, result.Exercise))
}

// GetLog はエクササイズログを返す。
// GET /api/users/:id/logs?from=&to=&limit=
func (h *ExerciseHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	query := r.URL.Query()

	result, err := h.service.GetLog(r.Context(), userID, exercise.LogQuery{
		From:  query.Get("from"),
		To:    query.Get("to"),
		Limit: query.Get("limit"),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLogResponse(result.User, result.Exercises))
}
