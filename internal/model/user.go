// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// パスワード登録ユーザーとGoogleログインユーザーの両方を1レコードで扱う。
type User struct {
	ID           string
	Name         string
	Country      string
	Email        string
	PasswordHash string // Googleログインのみのユーザーは空
	GoogleID     string // パスワード登録のみのユーザーは空
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword はパスワードログインが可能なユーザーかどうかを返す。
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
