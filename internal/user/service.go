// Package user はユーザー情報の取得を提供する。
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/mogumogu/internal/model"
	"github.com/hitoshi/mogumogu/internal/repository"
)

// Profile は外部に公開するユーザー情報。
// パスワードハッシュ等の認証情報は含めない。
type Profile struct {
	ID           string
	Name         string
	Country      string
	Email        string
	IsVerified   bool
	HasGoogle    bool
	RegisteredAt time.Time
}

// Service はユーザー情報のサービス層。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// GetProfile は認証済みユーザー自身のプロフィールを返す。
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return &Profile{
		ID:           user.ID,
		Name:         user.Name,
		Country:      user.Country,
		Email:        user.Email,
		IsVerified:   user.IsVerified,
		HasGoogle:    user.GoogleID != "",
		RegisteredAt: user.CreatedAt,
	}, nil
}
