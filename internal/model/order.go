package model

import "time"

// OrderLine は注文内の1商品と数量を表す。
type OrderLine struct {
	ItemID   string
	Quantity int // 1以上
}

// Order はユーザーの注文を表す。
// 金額計算はフロントエンド側で行われるため、TotalAmountは申告値をそのまま保持する。
type Order struct {
	ID             string
	UserID         string
	Lines          []OrderLine
	TotalAmount    int
	BillingDetails string // 配送先住所などの補足情報
	CreatedAt      time.Time
}

// OrderLineDetail は注文明細に商品情報を結合した表示用の構造体。
type OrderLineDetail struct {
	OrderLine
	ItemName  string
	ItemPrice int
	ImageURL  string
}

// OrderWithItems は注文と商品情報付き明細を結合した構造体。
type OrderWithItems struct {
	Order
	LineDetails []OrderLineDetail
}
