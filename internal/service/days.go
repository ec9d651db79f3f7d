package service

import (
	"time"

	"go_flashcard_study/internal/model"
)

// 日付は設定されたタイムゾーンでの暦日 (YYYY-MM-DD) で扱います

func dayOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(model.DateLayout)
}

// dayBefore は day の n 日前を返します。day が不正な場合は空文字です。
func dayBefore(day string, n int) string {
	t, err := time.Parse(model.DateLayout, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -n).Format(model.DateLayout)
}
