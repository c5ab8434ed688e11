package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/mogumogu/internal/model"
)

// PostgresQueryRepo はPostgreSQLを使用した問い合わせリポジトリ。
type PostgresQueryRepo struct {
	db *sql.DB
}

// NewPostgresQueryRepo はPostgresQueryRepoを生成する。
func NewPostgresQueryRepo(db *sql.DB) *PostgresQueryRepo {
	return &PostgresQueryRepo{db: db}
}

// Create は問い合わせを作成する。
func (r *PostgresQueryRepo) Create(ctx context.Context, query *model.Query) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO queries (id, user_id, body, created_at) VALUES ($1, $2, $3, $4)`,
		query.ID, query.UserID, query.Body, query.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert query: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの問い合わせ一覧を作成日時の降順で返す。
func (r *PostgresQueryRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Query, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, body, created_at FROM queries
		 WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	defer rows.Close()

	var queries []*model.Query
	for rows.Next() {
		q := &model.Query{}
		if err := rows.Scan(&q.ID, &q.UserID, &q.Body, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan query: %w", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queries: %w", err)
	}

	return queries, nil
}

// compile-time interface check
var _ QueryRepository = (*PostgresQueryRepo)(nil)
