// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/mogumogu/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// メールアドレスの一意性はストア側の制約で強制され、
// 違反はIsUniqueViolationで判定できるエラーとして返る。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する（大文字小文字を区別する完全一致）。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByGoogleID はGoogleのsubject識別子でユーザーを検索する。見つからない場合はnilを返す。
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)

	// Create はユーザーを作成する。
	// email/google_idの一意制約違反はIsUniqueViolationで判定可能なエラーとして返る。
	Create(ctx context.Context, user *model.User) error

	// SetVerified は指定IDのユーザーのメール確認フラグを立てる。
	// すでに確認済みの場合も成功する（冪等）。
	SetVerified(ctx context.Context, id string) error

	// LinkGoogleID は既存ユーザーにGoogleのsubject識別子を紐付ける。
	LinkGoogleID(ctx context.Context, userID, googleID string) error
}

// CatalogRepository は商品・レストランデータの読み取りインターフェース。
type CatalogRepository interface {
	// ListItems はフィルタ条件に一致する商品一覧をレストラン名付きで返す。
	ListItems(ctx context.Context, filter model.CatalogFilter) ([]model.ItemWithRestaurant, error)

	// ListRestaurants は全レストランを返す。
	ListRestaurants(ctx context.Context) ([]model.Restaurant, error)

	// ListCategories は商品カテゴリの重複なし一覧を返す。
	ListCategories(ctx context.Context) ([]string, error)
}

// OrderRepository は注文データの永続化インターフェース。
type OrderRepository interface {
	// Create は注文と明細を同一トランザクションで作成する。
	Create(ctx context.Context, order *model.Order) error

	// ListByUserID はユーザーの注文一覧を商品情報付き明細とともに返す。
	// 作成日時の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]model.OrderWithItems, error)
}

// QueryRepository は問い合わせデータの永続化インターフェース。
type QueryRepository interface {
	// Create は問い合わせを作成する。
	Create(ctx context.Context, query *model.Query) error

	// ListByUserID はユーザーの問い合わせ一覧を作成日時の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Query, error)
}
