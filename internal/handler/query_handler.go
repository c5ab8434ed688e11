package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/mogumogu/internal/middleware"
	"github.com/hitoshi/mogumogu/internal/model"
)

// InquiryServiceInterface は問い合わせハンドラーが必要とするサービスインターフェース。
type InquiryServiceInterface interface {
	Create(ctx context.Context, userID, body string) (*model.Query, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Query, error)
}

// QueryHandler は問い合わせのHTTPハンドラー。
type QueryHandler struct {
	service InquiryServiceInterface
}

// NewQueryHandler はQueryHandlerを生成する。
func NewQueryHandler(service InquiryServiceInterface) *QueryHandler {
	return &QueryHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// createQueryRequest は問い合わせ作成リクエストのボディ。
type createQueryRequest struct {
	Query string `json:"query"`
}

// queryResponse は問い合わせ1件のレスポンス。
type queryResponse struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
}

// queryListResponse は問い合わせ履歴のレスポンス。
type queryListResponse struct {
	Queries []queryResponse `json:"queries"`
}

// Create は問い合わせを受け付ける。
// POST /api/queries
func (h *QueryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	query, err := h.service.Create(r.Context(), userID, req.Query)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, queryResponse{
		ID:        query.ID,
		Query:     query.Body,
		CreatedAt: query.CreatedAt,
	})
}

// List は認証済みユーザーの問い合わせ履歴を取得する。
// GET /api/queries
func (h *QueryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	queries, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := queryListResponse{Queries: make([]queryResponse, 0, len(queries))}
	for _, q := range queries {
		resp.Queries = append(resp.Queries, queryResponse{
			ID:        q.ID,
			Query:     q.Body,
			CreatedAt: q.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
