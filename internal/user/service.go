// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/exercisetracker/internal/event"
	"github.com/hitoshi/exercisetracker/internal/metrics"
	"github.com/hitoshi/exercisetracker/internal/model"
	"github.com/hitoshi/exercisetracker/internal/repository"
)

// Service はユーザー管理のサービス層。
// 登録と一覧取得のビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	metrics   metrics.MetricsCollector
	publisher event.Publisher
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorとpublisherはnilを許容する。
func NewService(
	userRepo repository.UserRepository,
	collector metrics.MetricsCollector,
	publisher event.Publisher,
) *Service {
	return &Service{
		userRepo:  userRepo,
		metrics:   collector,
		publisher: publisher,
		now:       time.Now,
	}
}

// Register はユーザーを登録する。
// usernameは前後の空白を除去し、空なら入力不備エラーを返す。
// 一意性の判定はリポジトリに任せる。
func (s *Service) Register(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, model.NewValidationError(model.MsgUsernameRequired)
	}

	user := &model.User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: s.now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicateUsername) {
			slog.Warn("username already registered",
				slog.String("username", username),
			)
			return nil, model.NewConflictError(model.MsgSaveUserFailed, err)
		}
		return nil, model.NewPersistenceError(model.MsgSaveUserFailed, err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	if s.metrics != nil {
		s.metrics.RecordUserRegistered()
	}
	s.publish(ctx, event.NewUserRegistered(user, s.now()))

	return user, nil
}

// List は全ユーザーを登録順で返す。ユーザーがいない場合は空スライスを返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, model.NewPersistenceError(model.MsgListUsersFailed, err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
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
