// Package exercise はエクササイズ記録とログ取得のドメインロジックを提供する。
package exercise

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/exercisetracker/internal/event"
	"github.com/hitoshi/exercisetracker/internal/metrics"
	"github.com/hitoshi/exercisetracker/internal/model"
	"github.com/hitoshi/exercisetracker/internal/repository"
)

// Service はエクササイズのサービス層。
type Service struct {
	userRepo     repository.UserRepository
	exerciseRepo repository.ExerciseRepository
	metrics      metrics.MetricsCollector
	publisher    event.Publisher
	now          func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorとpublisherはnilを許容する。
func NewService(
	userRepo repository.UserRepository,
	exerciseRepo repository.ExerciseRepository,
	collector metrics.MetricsCollector,
	publisher event.Publisher,
) *Service {
	return &Service{
		userRepo:     userRepo,
		exerciseRepo: exerciseRepo,
		metrics:      collector,
		publisher:    publisher,
		now:          time.Now,
	}
}

// AddInput はエクササイズ追加の入力。リクエストの値を文字列のまま受け取る。
type AddInput struct {
	Description string
	Duration    string
	Date        string
}

// AddResult はエクササイズ追加の結果。
type AddResult struct {
	User     *model.User
	Exercise *model.Exercise
}

// LogQuery はログ取得のクエリパラメータ。
type LogQuery struct {
	From  string
	To    string
	Limit string
}

// LogResult はログ取得の結果。Exercisesはnilにならない。
type LogResult struct {
	User      *model.User
	Exercises []*model.Exercise
}

// AddExercise はユーザーにエクササイズを追加する。
// 入力検証、日付解決、ユーザー存在確認、保存の順に行う。
// descriptionは空文字のみを未指定とみなし、値は加工せずに保存する。
// 存在確認と保存の間はトランザクションで保護しない。
func (s *Service) AddExercise(ctx context.Context, userID string, in AddInput) (*AddResult, error) {
	duration, ok := parseDuration(in.Duration)
	if in.Description == "" || !ok {
		return nil, model.NewValidationError(model.MsgExerciseFieldsRequired)
	}

	date := s.now().UTC()
	if strings.TrimSpace(in.Date) != "" {
		parsed, err := ParseDate(in.Date)
		if err != nil {
			return nil, model.NewValidationError(model.MsgInvalidDate)
		}
		date = parsed
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ex := &model.Exercise{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Description: in.Description,
		Duration:    duration,
		Date:        date,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.exerciseRepo.Create(ctx, ex); err != nil {
		return nil, model.NewPersistenceError(model.MsgSaveExerciseFailed, err)
	}

	slog.Info("exercise logged",
		slog.String("user_id", user.ID),
		slog.String("exercise_id", ex.ID),
	)

	if s.metrics != nil {
		s.metrics.RecordExerciseLogged()
	}
	s.publish(ctx, event.NewExerciseLogged(user, ex, s.now()))

	return &AddResult{User: user, Exercise: ex}, nil
}

// GetLog はユーザーのエクササイズログをフィルタして返す。
// limitは正の整数の場合のみ適用し、それ以外は無制限とする。
func (s *Service) GetLog(ctx context.Context, userID string, q LogQuery) (*LogResult, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	filter, err := buildFilter(q)
	if err != nil {
		return nil, err
	}

	exercises, err := s.exerciseRepo.ListByUser(ctx, user.ID, filter)
	if err != nil {
		return nil, model.NewPersistenceError(model.MsgFetchExercisesFailed, err)
	}
	if exercises == nil {
		exercises = []*model.Exercise{}
	}

	if s.metrics != nil {
		s.metrics.RecordLogQuery(len(exercises))
	}

	return &LogResult{User: user, Exercises: exercises}, nil
}

// findUser はユーザーを取得し、存在しなければNotFoundを返す。
func (s *Service) findUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, model.NewPersistenceError(model.MsgFindUserFailed, err)
	}
	if user == nil {
		slog.Info("user not found", slog.String("user_id", userID))
		return nil, model.NewNotFoundError(model.MsgUserNotFound)
	}
	return user, nil
}

// buildFilter はクエリパラメータから検索条件を組み立てる。
func buildFilter(q LogQuery) (model.ExerciseFilter, error) {
	var filter model.ExerciseFilter

	if strings.TrimSpace(q.From) != "" {
		from, err := ParseDate(q.From)
		if err != nil {
			return filter, model.NewValidationError(model.MsgInvalidDate)
		}
		filter.From = &from
	}
	if strings.TrimSpace(q.To) != "" {
		to, err := ParseDate(q.To)
		if err != nil {
			return filter, model.NewValidationError(model.MsgInvalidDate)
		}
		filter.To = &to
	}

	filter.Limit = parseLimit(q.Limit)
	return filter, nil
}

// parseDuration は所要時間を数値に変換する。
// 空、数値でない、0、非有限の場合はfalseを返す。
func parseDuration(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil || d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return d, true
}

// parseLimit は件数上限を10進整数として解釈する。解釈できなければ0（無制限）。
func parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// publish はイベントを発行し、失敗はログ出力のみとする。
func (s *Service) publish(ctx context.Context, e event.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish event",
			slog.String("type", e.Type),
			slog.String("key", e.Key),
			slog.String("error", err.Error()),
		)
	}
}
