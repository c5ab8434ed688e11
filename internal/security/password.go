// Package security はパスワードの一方向ハッシュ化と検証を提供する。
package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost はbcryptのコストファクタ。固定の設定値として扱う。
const bcryptCost = 10

// HashPassword は平文パスワードをbcryptでハッシュ化する。
// ソルトはbcryptが内部で生成するため、同じ平文でも毎回異なるダイジェストになる。
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword は平文パスワードがダイジェストと一致するかを検証する。
// 比較はbcryptライブラリの定数時間比較に委ねる。
func VerifyPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
