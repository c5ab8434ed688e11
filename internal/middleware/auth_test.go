package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/mogumogu/internal/auth"
)

func newAuthTestHandler(t *testing.T, verifier TokenVerifier) (http.Handler, *string) {
	t.Helper()
	var gotUserID string
	handler := NewAuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("user ID should be in context: %v", err)
		}
		gotUserID = userID
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &gotUserID
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Issue("user-1", "taro@example.com")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	handler, gotUserID := newAuthTestHandler(t, issuer)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if *gotUserID != "user-1" {
		t.Errorf("user ID in context = %q, want user-1", *gotUserID)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	handler := NewAuthMiddleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != "INVALID_TOKEN" {
		t.Errorf("code = %q, want INVALID_TOKEN", body.Code)
	}
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	handler := NewAuthMiddleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "token-without-prefix"},
		{"empty bearer", "Bearer "},
		{"basic auth", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusForbidden {
				t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
			}
		})
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	other := auth.NewTokenIssuer("other-secret", time.Hour)
	token, err := other.Issue("user-1", "taro@example.com")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	handler := NewAuthMiddleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := auth.NewTokenIssuer("test-secret", -time.Minute)
	token, err := expired.Issue("user-1", "taro@example.com")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	handler := NewAuthMiddleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached with an expired token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestUserIDFromContext_Missing(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("expected error for context without user ID")
	}
}

func TestContextWithUserID_RoundTrip(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "user-42")
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext failed: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("user ID = %q, want user-42", userID)
	}
}
