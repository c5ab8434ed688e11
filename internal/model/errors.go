// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, catalog, order, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	ErrCodeUserAlreadyExists  = "USER_ALREADY_EXISTS"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeItemNotFound       = "ITEM_NOT_FOUND"
	ErrCodeInvalidFilter      = "INVALID_FILTER"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeInvalidOrder       = "INVALID_ORDER"
	ErrCodeEmptyQuery         = "EMPTY_QUERY"
)

// FieldError は入力値1項目に対するバリデーション違反を表す。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors は入力バリデーション違反の集合を表す。
// 最初の違反だけでなく、検出した全ての違反を保持する。
type ValidationErrors []FieldError

// Error はerrorインターフェースを実装する。
func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレス未登録とパスワード不一致を意図的に区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailNotVerifiedError はメール未確認エラーを生成する。
// 認証失敗とは別のエラーとして返す（UX優先の設計判断）。
func NewEmailNotVerifiedError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailNotVerified,
		Message:  "メールアドレスの確認が完了していません。",
		Category: "auth",
		Action:   "登録時に送信された確認メールのリンクを開いてください。",
	}
}

// NewUserAlreadyExistsError はメールアドレス重複エラーを生成する。
func NewUserAlreadyExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeUserAlreadyExists,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "ログインするか、別のメールアドレスで登録してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidTokenError はトークン検証失敗エラーを生成する。
// 署名不一致・形式不正・期限切れは全て同一のエラーに集約する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "認証トークンが無効です。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewItemNotFoundError は商品未検出エラーを生成する。
func NewItemNotFoundError(itemID string) *APIError {
	return &APIError{
		Code:     ErrCodeItemNotFound,
		Message:  fmt.Sprintf("指定された商品が見つかりません: %s", itemID),
		Category: "catalog",
		Action:   "商品IDを確認してください。",
	}
}

// NewInvalidFilterError は商品一覧の絞り込み条件が不正な場合のエラーを生成する。
func NewInvalidFilterError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFilter,
		Message:  fmt.Sprintf("絞り込み条件が不正です: %s", reason),
		Category: "catalog",
		Action:   "絞り込み条件を確認してください。",
	}
}

// NewInvalidOrderError は注文内容が不正な場合のエラーを生成する。
func NewInvalidOrderError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidOrder,
		Message:  fmt.Sprintf("注文内容が不正です: %s", reason),
		Category: "order",
		Action:   "カートの内容を確認して再度お試しください。",
	}
}

// NewEmptyQueryError は問い合わせ本文が空の場合のエラーを生成する。
func NewEmptyQueryError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyQuery,
		Message:  "問い合わせ内容が空です。",
		Category: "validation",
		Action:   "問い合わせ内容を入力してください。",
	}
}
