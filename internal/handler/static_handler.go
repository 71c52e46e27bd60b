package handler

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"
)

// HealthChecker は依存先の疎通確認インターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// healthCheckTimeout はヘルスチェック1回あたりのタイムアウト。
const healthCheckTimeout = 2 * time.Second

// NewIndexHandler はviewsDir/index.htmlを返すハンドラーを生成する。
// GET /
func NewIndexHandler(viewsDir string) http.HandlerFunc {
	index := filepath.Join(viewsDir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, index)
	}
}

// NewPublicHandler はpublicDir配下の静的ファイルを/public/以下で配信するハンドラーを生成する。
func NewPublicHandler(publicDir string) http.Handler {
	return http.StripPrefix("/public/", http.FileServer(http.Dir(publicDir)))
}

// NewHealthHandler はヘルスチェックハンドラーを生成する。
// checkerがnilの場合は常にokを返す。
// GET /health
func NewHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()

			if err := checker.PingContext(ctx); err != nil {
				slog.Warn("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
