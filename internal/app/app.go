// Package app は設定読み込みから依存関係のワイヤリング、サーバー起動までを担う。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/exercisetracker/internal/config"
	"github.com/hitoshi/exercisetracker/internal/database"
	"github.com/hitoshi/exercisetracker/internal/event"
	"github.com/hitoshi/exercisetracker/internal/exercise"
	"github.com/hitoshi/exercisetracker/internal/handler"
	"github.com/hitoshi/exercisetracker/internal/logger"
	"github.com/hitoshi/exercisetracker/internal/metrics"
	"github.com/hitoshi/exercisetracker/internal/middleware"
	"github.com/hitoshi/exercisetracker/internal/repository"
	"github.com/hitoshi/exercisetracker/internal/user"
)

const (
	defaultPort        = "3001"
	dbPingTimeout      = 5 * time.Second
	healthcheckTimeout = 5 * time.Second
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. LOG_LEVELを反映する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = defaultPort
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("store", cfg.Store),
		slog.String("port", cfg.ServerPort),
		slog.Bool("events_enabled", cfg.EventsEnabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// dependencies は起動時に構築した依存関係と、その解放対象を保持する。
type dependencies struct {
	router      http.Handler
	db          *sql.DB
	rateLimiter *middleware.RateLimiter
	publisher   event.Publisher
}

// Close は保持しているリソースを解放する。
func (d *dependencies) Close() {
	if d.rateLimiter != nil {
		d.rateLimiter.Stop()
	}
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			slog.Warn("failed to close event publisher", slog.String("error", err.Error()))
		}
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			slog.Warn("failed to close database", slog.String("error", err.Error()))
		}
	}
}

// buildDependencies はストア、サービス、ミドルウェアを組み立ててルーターを構築する。
func buildDependencies(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	deps := &dependencies{}

	// 1. ストアの初期化
	var (
		userRepo     repository.UserRepository
		exerciseRepo repository.ExerciseRepository
	)
	switch cfg.Store {
	case config.StoreMemory:
		userRepo = repository.NewMemoryUserRepo()
		exerciseRepo = repository.NewMemoryExerciseRepo()
		slog.Info("using in-memory store")
	default:
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		deps.db = db
		userRepo = repository.NewPostgresUserRepo(db)
		exerciseRepo = repository.NewPostgresExerciseRepo(db)
	}

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 3. イベント発行の初期化
	if cfg.EventsEnabled() {
		deps.publisher = event.NewKafkaPublisher(cfg.KafkaBrokers, event.Topics{
			Users:     cfg.KafkaUserTopic,
			Exercises: cfg.KafkaExerciseTopic,
		})
		slog.Info("kafka event publishing enabled",
			slog.Any("brokers", cfg.KafkaBrokers),
		)
	} else {
		deps.publisher = event.NopPublisher{}
	}

	// 4. ドメインサービスの初期化
	userService := user.NewService(userRepo, collector, deps.publisher)
	exerciseService := exercise.NewService(userRepo, exerciseRepo, collector, deps.publisher)

	// 5. ルーターの構築
	limiterCfg := middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitRegister)
	limiterCfg.TrustProxyHeaders = cfg.TrustProxyHeaders
	deps.rateLimiter = middleware.NewRateLimiter(limiterCfg)

	routerDeps := &handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       deps.rateLimiter,
		Metrics:           collector,
		Gatherer:          registry,
		ViewsDir:          cfg.ViewsDir,
		PublicDir:         cfg.PublicDir,
		UserService:       userService,
		ExerciseService:   exerciseService,
	}
	if deps.db != nil {
		routerDeps.HealthChecker = deps.db
	}

	deps.router = handler.NewRouter(routerDeps)
	return deps, nil
}

// openDatabase はDB接続を開き、疎通確認と必要に応じたマイグレーションを行う。
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg.AutoMigrate {
		if err := runMigrate(cfg); err != nil {
			return nil, err
		}
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Ping(ctx, db, dbPingTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")
	return db, nil
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	deps, err := buildDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      deps.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("migrate requires STORE=%s, got %q", config.StorePostgres, cfg.Store)
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.MigrateUp(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
func runHealthcheck(port string) error {
	return checkHealth(fmt.Sprintf("http://localhost:%s/health", port))
}

// checkHealth は/healthエンドポイントにHTTPリクエストを送り、200以外をエラーとして返す。
func checkHealth(healthURL string) error {
	client := &http.Client{Timeout: healthcheckTimeout}

	resp, err := client.Get(healthURL)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
