// Package event はドメインイベントの発行を提供する。
// 発行はベストエフォートで、失敗してもAPIの結果は変わらない。
package event

import (
	"context"
	"time"

	"github.com/hitoshi/exercisetracker/internal/model"
)

// イベント種別
const (
	TypeUserRegistered = "user.registered"
	TypeExerciseLogged = "exercise.logged"
)

// Event は発行するドメインイベント。
// Keyはパーティショニングに使い、常にユーザーIDを入れる。
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"-"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Publisher はイベント発行のインターフェース。
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// UserRegisteredData はuser.registeredイベントのペイロード。
type UserRegisteredData struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// ExerciseLoggedData はexercise.loggedイベントのペイロード。
type ExerciseLoggedData struct {
	ExerciseID  string    `json:"exercise_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Date        time.Time `json:"date"`
}

// NewUserRegistered はユーザー登録イベントを生成する。
func NewUserRegistered(user *model.User, now time.Time) Event {
	return Event{
		Type:       TypeUserRegistered,
		Key:        user.ID,
		OccurredAt: now.UTC(),
		Data: UserRegisteredData{
			UserID:   user.ID,
			Username: user.Username,
		},
	}
}

// NewExerciseLogged はエクササイズ記録イベントを生成する。
func NewExerciseLogged(user *model.User, exercise *model.Exercise, now time.Time) Event {
	return Event{
		Type:       TypeExerciseLogged,
		Key:        user.ID,
		OccurredAt: now.UTC(),
		Data: ExerciseLoggedData{
			ExerciseID:  exercise.ID,
			UserID:      user.ID,
			Username:    user.Username,
			Description: exercise.Description,
			Duration:    exercise.Duration,
			Date:        exercise.Date.UTC(),
		},
	}
}

// NopPublisher はイベントを破棄するPublisher。
// KAFKA_BROKERSが未設定の場合に使用する。
type NopPublisher struct{}

// Publish は何もしない。
func (NopPublisher) Publish(ctx context.Context, e Event) error { return nil }

// Close は何もしない。
func (NopPublisher) Close() error { return nil }
