// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ErrorKind はAPIErrorの種別を表す。
// HTTPステータスコードへの変換はhandler層の責務とする。
type ErrorKind string

const (
	// ErrKindValidation は必須入力の欠落など、リクエスト内容の不備を表す。
	ErrKindValidation ErrorKind = "validation"
	// ErrKindNotFound は参照先のユーザーが存在しないことを表す。
	ErrKindNotFound ErrorKind = "not_found"
	// ErrKindConflict はusernameの一意制約違反を表す。
	ErrKindConflict ErrorKind = "conflict"
	// ErrKindPersistence はストレージ層の失敗を表す。
	ErrKindPersistence ErrorKind = "persistence"
)

// APIError はハンドラー境界でレスポンスに変換されるドメインエラー。
// Messageはそのままレスポンスの {"error": ...} に入る。
// Errは原因エラーでログにのみ出力する。
type APIError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap は原因エラーを返す。
func (e *APIError) Unwrap() error {
	return e.Err
}

// レスポンスに載せるエラーメッセージ
const (
	MsgUsernameRequired       = "Username is required"
	MsgSaveUserFailed         = "Error saving user"
	MsgListUsersFailed        = "Error fetching users"
	MsgExerciseFieldsRequired = "Description and duration are required"
	MsgInvalidDate            = "Invalid date"
	MsgUserNotFound           = "User not found"
	MsgFindUserFailed         = "Error finding user"
	MsgSaveExerciseFailed     = "Error saving exercise"
	MsgFetchExercisesFailed   = "Error fetching exercises"
)

// ErrDuplicateUsername はusernameが既に登録済みであることを表す。
// リポジトリ実装は一意制約違反をこのエラーでラップして返す。
var ErrDuplicateUsername = errors.New("username already exists")

// NewValidationError は入力不備エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{Kind: ErrKindValidation, Message: message}
}

// NewNotFoundError はユーザー未検出エラーを生成する。
func NewNotFoundError(message string) *APIError {
	return &APIError{Kind: ErrKindNotFound, Message: message}
}

// NewConflictError は一意制約違反エラーを生成する。
func NewConflictError(message string, err error) *APIError {
	return &APIError{Kind: ErrKindConflict, Message: message, Err: err}
}

// NewPersistenceError はストレージ失敗エラーを生成する。
func NewPersistenceError(message string, err error) *APIError {
	return &APIError{Kind: ErrKindPersistence, Message: message, Err: err}
}

// IsKind はerrのチェーンに指定種別のAPIErrorが含まれるかを返す。
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}
