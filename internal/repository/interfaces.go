// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/exercisetracker/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// usernameが既に存在する場合は model.ErrDuplicateUsername をラップしたエラーを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	// IDの形式が不正な場合も見つからないものとして扱う。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// List は全ユーザーを登録順で返す。
	List(ctx context.Context) ([]*model.User, error)
}

// ExerciseRepository はエクササイズ記録の永続化インターフェース。
type ExerciseRepository interface {
	// Create はエクササイズ記録を作成する。
	// userIDの存在確認は呼び出し側の責務とする。
	Create(ctx context.Context, exercise *model.Exercise) error

	// ListByUser はユーザーのエクササイズ記録を登録順で返す。
	// filterの日付範囲は両端を含み、Limitが正の場合のみ件数を制限する。
	ListByUser(ctx context.Context, userID string, filter model.ExerciseFilter) ([]*model.Exercise, error)
}
