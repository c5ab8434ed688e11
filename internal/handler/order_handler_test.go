package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/mogumogu/internal/middleware"
	"github.com/hitoshi/mogumogu/internal/model"
	"github.com/hitoshi/mogumogu/internal/order"
)

// --- モック定義 ---

type mockOrderService struct {
	CreateFunc     func(ctx context.Context, userID string, input order.CreateInput) (*model.Order, error)
	ListByUserFunc func(ctx context.Context, userID string) ([]model.OrderWithItems, error)
}

func (m *mockOrderService) Create(ctx context.Context, userID string, input order.CreateInput) (*model.Order, error) {
	return m.CreateFunc(ctx, userID, input)
}

func (m *mockOrderService) ListByUser(ctx context.Context, userID string) ([]model.OrderWithItems, error) {
	return m.ListByUserFunc(ctx, userID)
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
}

func TestOrderHandler_Create_Success(t *testing.T) {
	var gotUserID string
	var gotInput order.CreateInput
	service := &mockOrderService{
		CreateFunc: func(ctx context.Context, userID string, input order.CreateInput) (*model.Order, error) {
			gotUserID = userID
			gotInput = input
			return &model.Order{ID: "order-1", UserID: userID}, nil
		},
	}
	h := NewOrderHandler(service)

	body := `{"items":[{"item_id":"item-1","quantity":2}],"total_amount":1600,"billing_details":"東京都渋谷区1-2-3"}`
	w := httptest.NewRecorder()

	h.Create(w, authedRequest(http.MethodPost, "/api/orders", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotUserID != "user-1" {
		t.Errorf("userID = %q, want user-1", gotUserID)
	}
	if len(gotInput.Lines) != 1 || gotInput.Lines[0].ItemID != "item-1" || gotInput.Lines[0].Quantity != 2 {
		t.Errorf("unexpected lines: %+v", gotInput.Lines)
	}
	if gotInput.TotalAmount != 1600 {
		t.Errorf("total = %d, want 1600", gotInput.TotalAmount)
	}

	var resp createOrderResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.OrderID != "order-1" {
		t.Errorf("order_id = %q, want order-1", resp.OrderID)
	}
}

func TestOrderHandler_Create_InvalidOrder(t *testing.T) {
	service := &mockOrderService{
		CreateFunc: func(ctx context.Context, userID string, input order.CreateInput) (*model.Order, error) {
			return nil, model.NewInvalidOrderError("注文する商品がありません")
		},
	}
	h := NewOrderHandler(service)

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/api/orders", `{"items":[],"total_amount":0}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestOrderHandler_Create_NoUserInContext(t *testing.T) {
	service := &mockOrderService{
		CreateFunc: func(ctx context.Context, userID string, input order.CreateInput) (*model.Order, error) {
			t.Error("service should not be called without a user")
			return nil, nil
		},
	}
	h := NewOrderHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestOrderHandler_List_ReturnsOrdersWithItems(t *testing.T) {
	createdAt := time.Date(2026, 8, 20, 18, 30, 0, 0, time.UTC)
	service := &mockOrderService{
		ListByUserFunc: func(ctx context.Context, userID string) ([]model.OrderWithItems, error) {
			return []model.OrderWithItems{
				{
					Order: model.Order{
						ID:          "order-1",
						UserID:      userID,
						TotalAmount: 1600,
						CreatedAt:   createdAt,
					},
					LineDetails: []model.OrderLineDetail{
						{
							OrderLine: model.OrderLine{ItemID: "item-1", Quantity: 2},
							ItemName:  "カレーライス",
							ItemPrice: 800,
						},
					},
				},
			}, nil
		},
	}
	h := NewOrderHandler(service)

	w := httptest.NewRecorder()
	h.List(w, authedRequest(http.MethodGet, "/api/orders", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp orderListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(resp.Orders))
	}

	got := resp.Orders[0]
	if got.ID != "order-1" || got.TotalAmount != 1600 {
		t.Errorf("unexpected order: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].ItemName != "カレーライス" || got.Items[0].Quantity != 2 {
		t.Errorf("unexpected items: %+v", got.Items)
	}
}

func TestOrderHandler_List_EmptyHistoryIsEmptyArray(t *testing.T) {
	service := &mockOrderService{
		ListByUserFunc: func(ctx context.Context, userID string) ([]model.OrderWithItems, error) {
			return nil, nil
		},
	}
	h := NewOrderHandler(service)

	w := httptest.NewRecorder()
	h.List(w, authedRequest(http.MethodGet, "/api/orders", ""))

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if string(raw["orders"]) != "[]" {
		t.Errorf("orders = %s, want []", raw["orders"])
	}
}
