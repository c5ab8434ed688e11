package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/mogumogu/internal/auth"
	"github.com/hitoshi/mogumogu/internal/metrics"
	"github.com/hitoshi/mogumogu/internal/middleware"
	"github.com/hitoshi/mogumogu/internal/model"
)

const oauthStateCookie = "oauth_state"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, input auth.RegisterInput) (*model.User, error)
	VerifyEmail(ctx context.Context, userID string) error
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	GetLoginURL(state string) string
	GoogleLogin(ctx context.Context, code string) (string, *model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	BaseURL      string
	CookieSecure bool
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnil許容。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, collector metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: collector,
	}
}

// --- リクエスト・レスポンス型 ---

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerResponse はユーザー登録のレスポンス。
type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse はログイン成功のレスポンス。
type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Register は新規ユーザーを登録する。
// POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	user, err := h.service.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Country:  req.Country,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRegistration()
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Message: "登録が完了しました。確認メールのリンクを開いてください。",
		UserID:  user.ID,
	})
}

// Login はメールアドレスとパスワードで認証し、アクセストークンを返す。
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	token, _, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.recordLoginFailure(err)
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "ログインしました。",
		Token:   token,
	})
}

// recordLoginFailure はログイン失敗をエラーコード別に記録する。
func (h *AuthHandler) recordLoginFailure(err error) {
	if h.metrics == nil {
		return
	}
	reason := "internal_error"
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		reason = strings.ToLower(apiErr.Code)
	}
	h.metrics.RecordLoginFailure(reason)
}

// VerifyEmail は確認メールのリンクからメールアドレスを確認済みにする。
// ブラウザで直接開かれるためプレーンテキストで応答する。
// GET /api/verify-email/{id}
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	err := h.service.VerifyEmail(r.Context(), userID)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeUserNotFound {
			writePlainText(w, http.StatusNotFound, "ユーザーが見つかりません。")
			return
		}
		slog.Error("failed to verify email", slog.String("error", err.Error()))
		writePlainText(w, http.StatusInternalServerError, "内部エラーが発生しました。")
		return
	}

	writePlainText(w, http.StatusOK, "メールアドレスの確認が完了しました。")
}

// writePlainText はプレーンテキストレスポンスを書き込む。
func writePlainText(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	w.Write([]byte(body))
}

// GoogleLogin はGoogle OAuthフローを開始する。
// GET /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.service.GetLoginURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback はOAuthコールバックを処理し、フロントエンドにリダイレクトする。
// アクセストークンはURLフラグメントで渡す。
// GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	// 1. stateの検証（CSRF対策）
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch", slog.String("query_state", state))
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_STATE",
			Message:  "stateパラメータが不正です。",
			Category: "auth",
			Action:   "ログインをやり直してください。",
		})
		return
	}

	// stateクッキーを削除
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 2. 認可コードの取得
	code := r.URL.Query().Get("code")
	if code == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "MISSING_CODE",
			Message:  "認可コードがありません。",
			Category: "auth",
			Action:   "ログインをやり直してください。",
		})
		return
	}

	// 3. 認証処理
	token, _, err := h.service.GoogleLogin(r.Context(), code)
	if err != nil {
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
	}

	// 4. フロントエンドにリダイレクト（トークンはフラグメントで渡す）
	redirectURL := strings.TrimRight(h.config.BaseURL, "/") + "/#token=" + url.QueryEscape(token)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}
