package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/mogumogu/internal/auth"
	"github.com/hitoshi/mogumogu/internal/middleware"
	"github.com/hitoshi/mogumogu/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	RegisterFunc    func(ctx context.Context, input auth.RegisterInput) (*model.User, error)
	VerifyEmailFunc func(ctx context.Context, userID string) error
	LoginFunc       func(ctx context.Context, email, password string) (string, *model.User, error)
	GetLoginURLFunc func(state string) string
	GoogleLoginFunc func(ctx context.Context, code string) (string, *model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, input auth.RegisterInput) (*model.User, error) {
	return m.RegisterFunc(ctx, input)
}

func (m *mockAuthService) VerifyEmail(ctx context.Context, userID string) error {
	return m.VerifyEmailFunc(ctx, userID)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	return m.LoginFunc(ctx, email, password)
}

func (m *mockAuthService) GetLoginURL(state string) string {
	return m.GetLoginURLFunc(state)
}

func (m *mockAuthService) GoogleLogin(ctx context.Context, code string) (string, *model.User, error) {
	return m.GoogleLoginFunc(ctx, code)
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{BaseURL: "http://localhost:3000", CookieSecure: false}
}

// --- Register のテスト ---

func TestAuthHandler_Register_Success(t *testing.T) {
	service := &mockAuthService{
		RegisterFunc: func(ctx context.Context, input auth.RegisterInput) (*model.User, error) {
			if input.Email != "taro@example.com" {
				t.Errorf("email = %q, want taro@example.com", input.Email)
			}
			return &model.User{ID: "user-1", Email: input.Email}, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	body := `{"name":"Taro","country":"Japan","email":"taro@example.com","password":"pass123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp registerResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.UserID != "user-1" {
		t.Errorf("user_id = %q, want user-1", resp.UserID)
	}
	if resp.Message == "" {
		t.Error("expected a message")
	}
}

func TestAuthHandler_Register_ValidationErrors(t *testing.T) {
	service := &mockAuthService{
		RegisterFunc: func(ctx context.Context, input auth.RegisterInput) (*model.User, error) {
			return nil, model.ValidationErrors{
				{Field: "name", Message: "名前を入力してください。"},
				{Field: "password", Message: "パスワードは6文字以上で入力してください。"},
			}
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp struct {
		Errors []model.FieldError `json:"errors"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Errors) != 2 {
		t.Errorf("errors = %d, want 2", len(resp.Errors))
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	service := &mockAuthService{
		RegisterFunc: func(ctx context.Context, input auth.RegisterInput) (*model.User, error) {
			return nil, model.NewUserAlreadyExistsError()
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	body := `{"name":"Taro","email":"taro@example.com","password":"pass123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	service := &mockAuthService{
		RegisterFunc: func(ctx context.Context, input auth.RegisterInput) (*model.User, error) {
			t.Error("service should not be called for malformed JSON")
			return nil, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- Login のテスト ---

func TestAuthHandler_Login_Success(t *testing.T) {
	service := &mockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (string, *model.User, error) {
			return "jwt-token", &model.User{ID: "user-1", Email: email}, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	body := `{"email":"taro@example.com","password":"pass123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp loginResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token != "jwt-token" {
		t.Errorf("token = %q, want jwt-token", resp.Token)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	service := &mockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (string, *model.User, error) {
			return "", nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	body := `{"email":"taro@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want INVALID_CREDENTIALS", resp.Code)
	}
}

func TestAuthHandler_Login_EmailNotVerified(t *testing.T) {
	service := &mockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (string, *model.User, error) {
			return "", nil, model.NewEmailNotVerifiedError()
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	body := `{"email":"taro@example.com","password":"pass123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

// --- VerifyEmail のテスト ---

func verifyEmailRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/verify-email/"+userID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", userID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAuthHandler_VerifyEmail_Success(t *testing.T) {
	service := &mockAuthService{
		VerifyEmailFunc: func(ctx context.Context, userID string) error {
			if userID != "user-1" {
				t.Errorf("userID = %q, want user-1", userID)
			}
			return nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	w := httptest.NewRecorder()
	h.VerifyEmail(w, verifyEmailRequest("user-1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("expected plain text body")
	}
}

func TestAuthHandler_VerifyEmail_NotFound(t *testing.T) {
	service := &mockAuthService{
		VerifyEmailFunc: func(ctx context.Context, userID string) error {
			return model.NewUserNotFoundError()
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	w := httptest.NewRecorder()
	h.VerifyEmail(w, verifyEmailRequest("missing"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
}

// --- Google OAuth のテスト ---

func TestAuthHandler_GoogleLogin_RedirectsWithStateCookie(t *testing.T) {
	service := &mockAuthService{
		GetLoginURLFunc: func(state string) string {
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	w := httptest.NewRecorder()

	h.GoogleLogin(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}

	var stateCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == oauthStateCookie {
			stateCookie = c
		}
	}
	if stateCookie == nil {
		t.Fatal("expected oauth state cookie")
	}
	if !stateCookie.HttpOnly {
		t.Error("state cookie should be HttpOnly")
	}

	location := w.Header().Get("Location")
	if !strings.Contains(location, stateCookie.Value) {
		t.Errorf("redirect URL should carry the state, got %q", location)
	}
}

func TestAuthHandler_GoogleCallback_Success(t *testing.T) {
	service := &mockAuthService{
		GoogleLoginFunc: func(ctx context.Context, code string) (string, *model.User, error) {
			if code != "auth-code" {
				t.Errorf("code = %q, want auth-code", code)
			}
			return "jwt-token", &model.User{ID: "user-1"}, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=state-value", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "state-value"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}

	location := w.Header().Get("Location")
	if !strings.HasPrefix(location, "http://localhost:3000") {
		t.Errorf("redirect should go to the frontend, got %q", location)
	}
	if !strings.Contains(location, "#token=jwt-token") {
		t.Errorf("redirect should carry the token in the fragment, got %q", location)
	}
}

func TestAuthHandler_GoogleCallback_StateMismatch(t *testing.T) {
	service := &mockAuthService{
		GoogleLoginFunc: func(ctx context.Context, code string) (string, *model.User, error) {
			t.Error("service should not be called on state mismatch")
			return "", nil, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=evil", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "state-value"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAuthHandler_GoogleCallback_MissingCode(t *testing.T) {
	service := &mockAuthService{}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=state-value", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "state-value"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
