package exercise

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate は日付文字列を解釈できないことを表す。
var ErrInvalidDate = errors.New("invalid date")

// dateLayouts はParseDateが受け付けるレイアウト。先頭から順に試す。
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateStringLayout,
}

// yearLayout は年のみの入力に使うレイアウト。
const yearLayout = "2006"

// DateStringLayout はレスポンスの日付表記（例: "Mon Jan 01 2024"）。
const DateStringLayout = "Mon Jan 02 2006"

// ParseDate は日付文字列をUTCの時刻に変換する。
// 4桁の数字は年（その年の1月1日）、それ以外の数字のみの文字列はUNIXミリ秒として扱う。
// タイムゾーン指定のないレイアウトはUTCとして解釈する。
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}

	if isDigits(s) {
		if len(s) == 4 {
			t, err := time.Parse(yearLayout, s)
			if err != nil {
				return time.Time{}, ErrInvalidDate
			}
			return t.UTC(), nil
		}
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, ErrInvalidDate
		}
		return time.UnixMilli(ms).UTC(), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate はレスポンス用にUTCで日付を整形する。
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateStringLayout)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
