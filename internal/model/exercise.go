package model

import "time"

// Exercise はユーザーに紐づく1件の運動記録を表す。
// UserIDはusers.idを論理的に参照するだけで、外部キー制約はない。
type Exercise struct {
	ID          string
	UserID      string
	Description string
	Duration    float64
	Date        time.Time
	CreatedAt   time.Time
}

// ExerciseFilter はエクササイズログの検索条件を表す。
type ExerciseFilter struct {
	// From が非nilの場合、date >= From の記録のみを対象とする。
	From *time.Time
	// To が非nilの場合、date <= To の記録のみを対象とする。
	To *time.Time
	// Limit は返却件数の上限。0以下は無制限。
	Limit int
}

// HasLimit は件数上限が指定されているかを返す。
func (f ExerciseFilter) HasLimit() bool {
	return f.Limit > 0
}
