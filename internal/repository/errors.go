package repository

import (
	"errors"

	"github.com/lib/pq"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const pgUniqueViolation = "23505"

// IsUniqueViolation はエラーが一意制約違反かどうかを判定する。
// 同時並行の登録・Googleログインで「先に他のリクエストが同じ行を作成した」
// ことを検出し、既存行の再読込にフォールバックするために使う。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	return false
}
