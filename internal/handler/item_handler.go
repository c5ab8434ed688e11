package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/mogumogu/internal/catalog"
	"github.com/hitoshi/mogumogu/internal/model"
)

// CatalogServiceInterface は商品ハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	ListItems(ctx context.Context, params catalog.FilterParams) ([]model.ItemWithRestaurant, error)
	GetFilterOptions(ctx context.Context) (*catalog.FilterOptions, error)
}

// ItemHandler は商品カタログのHTTPハンドラー。
type ItemHandler struct {
	service CatalogServiceInterface
}

// NewItemHandler はItemHandlerを生成する。
func NewItemHandler(service CatalogServiceInterface) *ItemHandler {
	return &ItemHandler{service: service}
}

// --- レスポンス型 ---

// itemResponse は商品1件のレスポンス。
type itemResponse struct {
	ID             string `json:"id"`
	RestaurantID   string `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	Rating         int    `json:"rating"`
	FoodType       string `json:"food_type"`
	Price          int    `json:"price"`
	ImageURL       string `json:"image_url"`
	Description    string `json:"description"`
}

// itemListResponse は商品一覧のレスポンス。
type itemListResponse struct {
	Items []itemResponse `json:"items"`
}

// restaurantResponse はレストラン1件のレスポンス。
type restaurantResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Rating    int    `json:"rating"`
	Cuisine   string `json:"cuisine"`
	IsVegOnly bool   `json:"is_veg_only"`
}

// filterOptionsResponse は絞り込みUIの選択肢のレスポンス。
type filterOptionsResponse struct {
	Restaurants []restaurantResponse `json:"restaurants"`
	Categories  []string             `json:"categories"`
	FoodTypes   []string             `json:"food_types"`
	SortOptions []string             `json:"sort_options"`
}

// ListItems は絞り込み条件に一致する商品一覧を取得する。
// GET /api/items?restaurant=xxx&category=xxx&foodType=veg&rating=4&sortPrice=lowToHigh
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := catalog.FilterParams{
		RestaurantID: q.Get("restaurant"),
		Category:     q.Get("category"),
		FoodType:     q.Get("foodType"),
		MinRating:    q.Get("rating"),
		SortPrice:    q.Get("sortPrice"),
	}

	items, err := h.service.ListItems(r.Context(), params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := itemListResponse{Items: make([]itemResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, toItemResponse(item))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetFilterOptions は絞り込みUIの選択肢を取得する。
// GET /api/filter-options
func (h *ItemHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.GetFilterOptions(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := filterOptionsResponse{
		Restaurants: make([]restaurantResponse, 0, len(options.Restaurants)),
		Categories:  options.Categories,
		FoodTypes:   make([]string, 0, len(options.FoodTypes)),
		SortOptions: make([]string, 0, len(options.SortOptions)),
	}
	for _, rest := range options.Restaurants {
		resp.Restaurants = append(resp.Restaurants, restaurantResponse{
			ID:        rest.ID,
			Name:      rest.Name,
			Address:   rest.Address,
			Rating:    rest.Rating,
			Cuisine:   rest.Cuisine,
			IsVegOnly: rest.IsVegOnly,
		})
	}
	for _, ft := range options.FoodTypes {
		resp.FoodTypes = append(resp.FoodTypes, string(ft))
	}
	for _, so := range options.SortOptions {
		resp.SortOptions = append(resp.SortOptions, string(so))
	}

	writeJSON(w, http.StatusOK, resp)
}

// toItemResponse はmodel.ItemWithRestaurantからAPIレスポンスに変換する。
func toItemResponse(item model.ItemWithRestaurant) itemResponse {
	return itemResponse{
		ID:             item.ID,
		RestaurantID:   item.RestaurantID,
		RestaurantName: item.RestaurantName,
		Name:           item.Name,
		Category:       item.Category,
		Rating:         item.Rating,
		FoodType:       string(item.FoodType),
		Price:          item.Price,
		ImageURL:       item.ImageURL,
		Description:    item.Description,
	}
}
