package model

import "time"

// Query はユーザーからの問い合わせを表す。
type Query struct {
	ID        string
	UserID    string
	Body      string
	CreatedAt time.Time
}
