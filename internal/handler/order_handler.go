package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/mogumogu/internal/middleware"
	"github.com/hitoshi/mogumogu/internal/model"
	"github.com/hitoshi/mogumogu/internal/order"
)

// OrderServiceInterface は注文ハンドラーが必要とするサービスインターフェース。
type OrderServiceInterface interface {
	Create(ctx context.Context, userID string, input order.CreateInput) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.OrderWithItems, error)
}

// OrderHandler は注文のHTTPハンドラー。
type OrderHandler struct {
	service OrderServiceInterface
}

// NewOrderHandler はOrderHandlerを生成する。
func NewOrderHandler(service OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// orderLineRequest は注文明細1行のリクエスト。
type orderLineRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// createOrderRequest は注文作成リクエストのボディ。
type createOrderRequest struct {
	Items          []orderLineRequest `json:"items"`
	TotalAmount    int                `json:"total_amount"`
	BillingDetails string             `json:"billing_details"`
}

// createOrderResponse は注文作成のレスポンス。
type createOrderResponse struct {
	Message string `json:"message"`
	OrderID string `json:"order_id"`
}

// orderLineResponse は注文明細1行のレスポンス。
type orderLineResponse struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	ImageURL string `json:"image_url"`
}

// orderResponse は注文1件のレスポンス。
type orderResponse struct {
	ID             string              `json:"id"`
	TotalAmount    int                 `json:"total_amount"`
	BillingDetails string              `json:"billing_details"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []orderLineResponse `json:"items"`
}

// orderListResponse は注文履歴のレスポンス。
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
}

// Create は注文を作成する。
// POST /api/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	lines := make([]model.OrderLine, 0, len(req.Items))
	for _, line := range req.Items {
		lines = append(lines, model.OrderLine{ItemID: line.ItemID, Quantity: line.Quantity})
	}

	created, err := h.service.Create(r.Context(), userID, order.CreateInput{
		Lines:          lines,
		TotalAmount:    req.TotalAmount,
		BillingDetails: req.BillingDetails,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResponse{
		Message: "注文を受け付けました。",
		OrderID: created.ID,
	})
}

// List は認証済みユーザーの注文履歴を取得する。
// GET /api/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	orders, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := orderListResponse{Orders: make([]orderResponse, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(o))
	}

	writeJSON(w, http.StatusOK, resp)
}

// toOrderResponse はmodel.OrderWithItemsからAPIレスポンスに変換する。
func toOrderResponse(o model.OrderWithItems) orderResponse {
	items := make([]orderLineResponse, 0, len(o.LineDetails))
	for _, line := range o.LineDetails {
		items = append(items, orderLineResponse{
			ItemID:   line.ItemID,
			ItemName: line.ItemName,
			Price:    line.ItemPrice,
			Quantity: line.Quantity,
			ImageURL: line.ImageURL,
		})
	}
	return orderResponse{
		ID:             o.ID,
		TotalAmount:    o.TotalAmount,
		BillingDetails: o.BillingDetails,
		CreatedAt:      o.CreatedAt,
		Items:          items,
	}
}
