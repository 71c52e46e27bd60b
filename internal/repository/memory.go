package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hitoshi/exercisetracker/internal/model"
)

// MemoryUserRepo はメモリ上にユーザーを保持するリポジトリ。
// ローカル開発（STORE=memory）とテストで使用する。
type MemoryUserRepo struct {
	mu         sync.RWMutex
	order      []string
	byID       map[string]model.User
	byUsername map[string]string
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:       make(map[string]model.User),
		byUsername: make(map[string]string),
	}
}

// Create はユーザーを保存する。usernameが既に存在する場合はエラーを返す。
func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return fmt.Errorf("failed to insert user %q: %w", user.Username, model.ErrDuplicateUsername)
	}
	if _, exists := r.byID[user.ID]; exists {
		return fmt.Errorf("failed to insert user: duplicate id %s", user.ID)
	}

	r.byID[user.ID] = *user
	r.byUsername[user.Username] = user.ID
	r.order = append(r.order, user.ID)
	return nil
}

// FindByID は指定IDのユーザーを返す。見つからない場合はnilを返す。
// UUIDは大文字小文字を区別せず、PostgreSQLのuuid型と同じく正規形で照合する。
func (r *MemoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[canonicalID(id)]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// List は全ユーザーを登録順で返す。
func (r *MemoryUserRepo) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.order))
	for _, id := range r.order {
		u := r.byID[id]
		users = append(users, &u)
	}
	return users, nil
}

// canonicalID はUUIDとして解釈できるIDを小文字ハイフン区切りの正規形にする。
// 解釈できないIDはそのまま返す。
func canonicalID(id string) string {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return id
}

// MemoryExerciseRepo はメモリ上にエクササイズ記録を保持するリポジトリ。
type MemoryExerciseRepo struct {
	mu        sync.RWMutex
	exercises []model.Exercise
}

// NewMemoryExerciseRepo はMemoryExerciseRepoを生成する。
func NewMemoryExerciseRepo() *MemoryExerciseRepo {
	return &MemoryExerciseRepo{}
}

// Create はエクササイズ記録を末尾に追加する。
func (r *MemoryExerciseRepo) Create(ctx context.Context, exercise *model.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.exercises = append(r.exercises, *exercise)
	return nil
}

// ListByUser はユーザーのエクササイズ記録を登録順にフィルタして返す。
func (r *MemoryExerciseRepo) ListByUser(ctx context.Context, userID string, filter model.ExerciseFilter) ([]*model.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*model.Exercise, 0)
	for _, e := range r.exercises {
		if e.UserID != userID {
			continue
		}
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		e := e
		results = append(results, &e)
		if filter.HasLimit() && len(results) >= filter.Limit {
			break
		}
	}
	return results, nil
}

// count は保持している全記録数を返す。
func (r *MemoryExerciseRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.exercises)
}

// compile-time interface checks
var _ UserRepository = (*MemoryUserRepo)(nil)
var _ ExerciseRepository = (*MemoryExerciseRepo)(nil)
