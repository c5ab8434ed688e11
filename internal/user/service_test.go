package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/mogumogu/internal/model"
)

// --- モック定義 ---

type mockUserRepo struct {
	FindByIDFunc func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return nil
}

func (m *mockUserRepo) SetVerified(ctx context.Context, id string) error {
	return nil
}

func (m *mockUserRepo) LinkGoogleID(ctx context.Context, userID, googleID string) error {
	return nil
}

func TestService_GetProfile_Success(t *testing.T) {
	registeredAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockUserRepo{
		FindByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{
				ID:           id,
				Name:         "Taro",
				Country:      "Japan",
				Email:        "taro@example.com",
				PasswordHash: "$2a$10$secret",
				GoogleID:     "google-sub-1",
				IsVerified:   true,
				CreatedAt:    registeredAt,
			}, nil
		},
	}

	service := NewService(repo)
	profile, err := service.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}

	if profile.ID != "user-1" || profile.Name != "Taro" || profile.Email != "taro@example.com" {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if !profile.IsVerified {
		t.Error("expected verified profile")
	}
	if !profile.HasGoogle {
		t.Error("expected HasGoogle to be true")
	}
	if !profile.RegisteredAt.Equal(registeredAt) {
		t.Errorf("registeredAt = %v, want %v", profile.RegisteredAt, registeredAt)
	}
}

func TestService_GetProfile_NotFound(t *testing.T) {
	repo := &mockUserRepo{
		FindByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}

	service := NewService(repo)
	_, err := service.GetProfile(context.Background(), "missing")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("expected USER_NOT_FOUND, got %v", err)
	}
}

func TestService_GetProfile_RepoError(t *testing.T) {
	repo := &mockUserRepo{
		FindByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return nil, errors.New("db down")
		},
	}

	service := NewService(repo)
	if _, err := service.GetProfile(context.Background(), "user-1"); err == nil {
		t.Error("expected error when repository fails")
	}
}
