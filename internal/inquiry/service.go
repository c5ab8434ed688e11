// Package inquiry はユーザーからの問い合わせの受付と履歴の取得を提供する。
package inquiry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/mogumogu/internal/model"
	"github.com/hitoshi/mogumogu/internal/repository"
	"github.com/microcosm-cc/bluemonday"
)

// Service は問い合わせに関するビジネスロジックを提供する。
type Service struct {
	queryRepo repository.QueryRepository
	sanitizer *bluemonday.Policy
}

// NewService はServiceを生成する。
// 問い合わせ本文はHTMLタグを全て除去してから保存する。
func NewService(queryRepo repository.QueryRepository) *Service {
	return &Service{
		queryRepo: queryRepo,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Create は問い合わせ本文をサニタイズして保存する。
// タグ除去後に本文が空になる場合はエラーを返す。
func (s *Service) Create(ctx context.Context, userID, body string) (*model.Query, error) {
	sanitized := strings.TrimSpace(s.sanitizer.Sanitize(body))
	if sanitized == "" {
		return nil, model.NewEmptyQueryError()
	}

	query := &model.Query{
		ID:        uuid.New().String(),
		UserID:    userID,
		Body:      sanitized,
		CreatedAt: time.Now(),
	}

	if err := s.queryRepo.Create(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}

	slog.Info("query created",
		slog.String("query_id", query.ID),
		slog.String("user_id", userID),
	)
	return query, nil
}

// ListByUser はユーザーの問い合わせ履歴を作成日時の降順で返す。
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*model.Query, error) {
	queries, err := s.queryRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	return queries, nil
}
