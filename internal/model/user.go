package model

import "time"

// User はエクササイズを記録する利用者を表す。
// usernameは前後の空白を除去した上で全ユーザー間で一意。
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}
