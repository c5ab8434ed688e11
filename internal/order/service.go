// Package order は注文の作成と履歴の取得を提供する。
package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/mogumogu/internal/metrics"
	"github.com/hitoshi/mogumogu/internal/model"
	"github.com/hitoshi/mogumogu/internal/repository"
)

// Service は注文に関するビジネスロジックを提供する。
type Service struct {
	orderRepo repository.OrderRepository
	metrics   metrics.MetricsCollector
}

// NewService はServiceを生成する。metricsはnil許容。
func NewService(orderRepo repository.OrderRepository, collector metrics.MetricsCollector) *Service {
	return &Service{orderRepo: orderRepo, metrics: collector}
}

// CreateInput は注文作成の入力。
type CreateInput struct {
	Lines          []model.OrderLine
	TotalAmount    int
	BillingDetails string
}

// validateCreateInput は注文内容を検証する。
func validateCreateInput(input CreateInput) error {
	if len(input.Lines) == 0 {
		return model.NewInvalidOrderError("注文する商品がありません")
	}
	for i, line := range input.Lines {
		if line.ItemID == "" {
			return model.NewInvalidOrderError(fmt.Sprintf("%d番目の商品IDが空です", i+1))
		}
		if line.Quantity < 1 {
			return model.NewInvalidOrderError(fmt.Sprintf("%d番目の商品の数量が不正です", i+1))
		}
	}
	if input.TotalAmount < 0 {
		return model.NewInvalidOrderError("合計金額が負の値です")
	}
	return nil
}

// Create は注文を検証して作成する。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Order, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:             uuid.New().String(),
		UserID:         userID,
		Lines:          input.Lines,
		TotalAmount:    input.TotalAmount,
		BillingDetails: input.BillingDetails,
		CreatedAt:      time.Now(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	slog.Info("order created",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int("line_count", len(order.Lines)),
		slog.Int("total_amount", order.TotalAmount),
	)

	if s.metrics != nil {
		s.metrics.RecordOrderCreated(len(order.Lines))
	}

	return order, nil
}

// ListByUser はユーザーの注文履歴を商品情報付きで作成日時の降順で返す。
func (s *Service) ListByUser(ctx context.Context, userID string) ([]model.OrderWithItems, error) {
	orders, err := s.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
