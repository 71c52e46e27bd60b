package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/exercisetracker/internal/exercise"
	"github.com/hitoshi/exercisetracker/internal/middleware"
	"github.com/hitoshi/exercisetracker/internal/model"
)

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// exerciseResponse はエクササイズ追加のAPIレスポンス。IDはユーザーID。
type exerciseResponse struct {
	Username    string  `json:"username"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	ID          string  `json:"id"`
	Date        string  `json:"date"`
}

// logEntryResponse はログ1件分のAPIレスポンス。
type logEntryResponse struct {
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Date        string  `json:"date"`
}

// logResponse はエクササイズログのAPIレスポンス。
type logResponse struct {
	Username string             `json:"username"`
	Count    int                `json:"count"`
	ID       string             `json:"id"`
	Log      []logEntryResponse `json:"log"`
}

// --- ヘルパー関数 ---

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		Username: user.Username,
		ID:       user.ID,
	}
}

// toExerciseResponse はユーザーと追加したエクササイズからAPIレスポンスに変換する。
func toExerciseResponse(user *model.User, ex *model.Exercise) exerciseResponse {
	return exerciseResponse{
		Username:    user.Username,
		Description: ex.Description,
		Duration:    ex.Duration,
		ID:          user.ID,
		Date:        exercise.FormatDate(ex.Date),
	}
}

// toLogResponse はログ取得結果からAPIレスポンスに変換する。countは返却件数。
func toLogResponse(user *model.User, exercises []*model.Exercise) logResponse {
	entries := make([]logEntryResponse, 0, len(exercises))
	for _, ex := range exercises {
		entries = append(entries, logEntryResponse{
			Description: ex.Description,
			Duration:    ex.Duration,
			Date:        exercise.FormatDate(ex.Date),
		})
	}
	return logResponse{
		Username: user.Username,
		Count:    len(entries),
		ID:       user.ID,
		Log:      entries,
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		switch {
		case model.IsKind(err, model.ErrKindConflict):
			// 重複登録はクライアント起因のためWARNに留める
			slog.Warn("conflict error",
				slog.String("kind", string(apiErr.Kind)),
				slog.String("error", apiErr.Error()),
			)
		case statusCode >= http.StatusInternalServerError:
			slog.Error("service error",
				slog.String("kind", string(apiErr.Kind)),
				slog.String("error", apiErr.Error()),
			)
		}
		middleware.WriteErrorResponse(w, statusCode, apiErr.Message)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorの種別からHTTPステータスコードにマッピングする。
// usernameの重複は保存失敗と同じ500で返す。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Kind {
	case model.ErrKindValidation:
		return http.StatusBadRequest
	case model.ErrKindNotFound:
		return http.StatusNotFound
	case model.ErrKindConflict, model.ErrKindPersistence:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
