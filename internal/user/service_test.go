package user

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hitoshi/exercisetracker/internal/event"
	"github.com/hitoshi/exercisetracker/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	createFn   func(ctx context.Context, user *model.User) error
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
	listFn     func(ctx context.Context) ([]*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}
func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockMetrics struct {
	usersRegistered int
}

func (m *mockMetrics) RecordUserRegistered() { m.usersRegistered++ }
func (m *mockMetrics) RecordExerciseLogged() {}
func (m *mockMetrics) RecordLogQuery(entries int) {}
func (m *mockMetrics) RecordHTTPStatus(statusCode int) {}
func (m *mockMetrics) RecordRequestDuration(duration time.Duration) {}

type mockPublisher struct {
	events []event.Event
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, e event.Event) error {
	m.events = append(m.events, e)
	return m.err
}
func (m *mockPublisher) Close() error { return nil }

// --- テスト ---

// TestService_Register はユーザー登録が空白除去済みのusernameで保存されることを検証する。
func TestService_Register(t *testing.T) {
	var saved *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			saved = user
			return nil
		},
	}
	m := &mockMetrics{}
	pub := &mockPublisher{}
	svc := NewService(repo, m, pub)

	user, err := svc.Register(context.Background(), "  alice  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want alice", user.Username)
	}
	if user.ID == "" {
		t.Error("ID should be generated")
	}
	if saved == nil || saved.ID != user.ID {
		t.Error("user should be passed to repository")
	}
	if m.usersRegistered != 1 {
		t.Errorf("usersRegistered = %d, want 1", m.usersRegistered)
	}
	if len(pub.events) != 1 || pub.events[0].Type != event.TypeUserRegistered || pub.events[0].Key != user.ID {
		t.Errorf("events = %+v", pub.events)
	}
}

// TestService_Register_GeneratesDistinctIDs は登録ごとに異なるIDが振られることを検証する。
func TestService_Register_GeneratesDistinctIDs(t *testing.T) {
	svc := NewService(&mockUserRepo{}, nil, nil)

	a, err := svc.Register(context.Background(), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.Register(context.Background(), "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == b.ID {
		t.Error("IDs should differ")
	}
}

// TestService_Register_EmptyUsername は空のusernameが入力不備になることを検証する。
func TestService_Register_EmptyUsername(t *testing.T) {
	called := false
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			called = true
			return nil
		},
	}
	svc := NewService(repo, nil, nil)

	for _, username := range []string{"", "   ", "\t\n"} {
		_, err := svc.Register(context.Background(), username)

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("Register(%q): expected APIError, got %v", username, err)
		}
		if apiErr.Kind != model.ErrKindValidation || apiErr.Message != model.MsgUsernameRequired {
			t.Errorf("Register(%q) = %+v", username, apiErr)
		}
	}
	if called {
		t.Error("repository should not be called for empty username")
	}
}

// TestService_Register_Duplicate は一意制約違反がConflictとして返ることを検証する。
func TestService_Register_Duplicate(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return fmt.Errorf("insert: %w", model.ErrDuplicateUsername)
		},
	}
	m := &mockMetrics{}
	pub := &mockPublisher{}
	svc := NewService(repo, m, pub)

	_, err := svc.Register(context.Background(), "alice")

	if !model.IsKind(err, model.ErrKindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	var apiErr *model.APIError
	errors.As(err, &apiErr)
	if apiErr.Message != model.MsgSaveUserFailed {
		t.Errorf("Message = %q, want %q", apiErr.Message, model.MsgSaveUserFailed)
	}
	if m.usersRegistered != 0 || len(pub.events) != 0 {
		t.Error("failed registration should not be recorded or published")
	}
}

// TestService_Register_StoreFailure はストレージ失敗がPersistenceになることを検証する。
func TestService_Register_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return storeErr
		},
	}
	svc := NewService(repo, nil, nil)

	_, err := svc.Register(context.Background(), "alice")

	if !model.IsKind(err, model.ErrKindPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if !errors.Is(err, storeErr) {
		t.Error("cause should be preserved")
	}
}

// TestService_Register_PublishFailureIgnored はイベント発行失敗が登録結果に影響しないことを検証する。
func TestService_Register_PublishFailureIgnored(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker down")}
	svc := NewService(&mockUserRepo{}, nil, pub)

	user, err := svc.Register(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("expected user")
	}
}

// TestService_List は一覧がリポジトリの順序で返ることを検証する。
func TestService_List(t *testing.T) {
	repo := &mockUserRepo{
		listFn: func(ctx context.Context) ([]*model.User, error) {
			return []*model.User{{ID: "1", Username: "a"}, {ID: "2", Username: "b"}}, nil
		},
	}
	svc := NewService(repo, nil, nil)

	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 || users[0].ID != "1" || users[1].ID != "2" {
		t.Errorf("users = %+v", users)
	}
}

// TestService_List_EmptyIsNotNil はユーザーがいない場合に空スライスを返すことを検証する。
func TestService_List_EmptyIsNotNil(t *testing.T) {
	svc := NewService(&mockUserRepo{}, nil, nil)

	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("users = %#v, want empty non-nil slice", users)
	}
}

// TestService_List_StoreFailure は一覧取得失敗がPersistenceになることを検証する。
func TestService_List_StoreFailure(t *testing.T) {
	repo := &mockUserRepo{
		listFn: func(ctx context.Context) ([]*model.User, error) {
			return nil, errors.New("timeout")
		},
	}
	svc := NewService(repo, nil, nil)

	_, err := svc.List(context.Background())

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != model.ErrKindPersistence || apiErr.Message != model.MsgListUsersFailed {
		t.Errorf("error = %+v", apiErr)
	}
}
