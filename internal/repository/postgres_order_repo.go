package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/mogumogu/internal/model"
)

// PostgresOrderRepo はPostgreSQLを使用した注文リポジトリ。
type PostgresOrderRepo struct {
	db *sql.DB
}

// NewPostgresOrderRepo はPostgresOrderRepoを生成する。
func NewPostgresOrderRepo(db *sql.DB) *PostgresOrderRepo {
	return &PostgresOrderRepo{db: db}
}

// Create は注文と明細を同一トランザクションで作成する。
func (r *PostgresOrderRepo) Create(ctx context.Context, order *model.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, total_amount, billing_details, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		order.ID, order.UserID, order.TotalAmount, order.BillingDetails, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, line := range order.Lines {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, item_id, quantity) VALUES ($1, $2, $3)`,
			order.ID, line.ItemID, line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByUserID はユーザーの注文一覧を商品情報付き明細とともに作成日時の降順で返す。
func (r *PostgresOrderRepo) ListByUserID(ctx context.Context, userID string) ([]model.OrderWithItems, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT o.id, o.user_id, o.total_amount, o.billing_details, o.created_at,
		        oi.item_id, oi.quantity, i.name, i.price, i.image_url
		 FROM orders o
		 JOIN order_items oi ON oi.order_id = o.id
		 JOIN items i ON i.id = oi.item_id
		 WHERE o.user_id = $1
		 ORDER BY o.created_at DESC, o.id, i.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	// 注文行が明細ごとに繰り返されるため、注文IDの切り替わりでグルーピングする
	var orders []model.OrderWithItems
	index := make(map[string]int)

	for rows.Next() {
		var (
			o    model.Order
			line model.OrderLineDetail
		)
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.TotalAmount, &o.BillingDetails, &o.CreatedAt,
			&line.ItemID, &line.Quantity, &line.ItemName, &line.ItemPrice, &line.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		i, ok := index[o.ID]
		if !ok {
			orders = append(orders, model.OrderWithItems{Order: o})
			i = len(orders) - 1
			index[o.ID] = i
		}
		orders[i].Lines = append(orders[i].Lines, line.OrderLine)
		orders[i].LineDetails = append(orders[i].LineDetails, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// compile-time interface check
var _ OrderRepository = (*PostgresOrderRepo)(nil)
