package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/mogumogu/internal/middleware"
	"github.com/hitoshi/mogumogu/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*user.Profile, error)
}

// UserHandler はユーザー情報のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// profileResponse はプロフィールのレスポンス。認証情報は含めない。
type profileResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Country      string    `json:"country"`
	Email        string    `json:"email"`
	IsVerified   bool      `json:"is_verified"`
	HasGoogle    bool      `json:"has_google"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Me は認証済みユーザー自身のプロフィールを取得する。
// GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:           profile.ID,
		Name:         profile.Name,
		Country:      profile.Country,
		Email:        profile.Email,
		IsVerified:   profile.IsVerified,
		HasGoogle:    profile.HasGoogle,
		RegisteredAt: profile.RegisteredAt,
	})
}
