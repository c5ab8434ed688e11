// Package catalog は商品カタログの閲覧機能を提供する。
package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hitoshi/mogumogu/internal/model"
	"github.com/hitoshi/mogumogu/internal/repository"
)

// Service は商品一覧の取得・絞り込みのサービス。
type Service struct {
	catalogRepo repository.CatalogRepository
}

// NewService はServiceを生成する。
func NewService(catalogRepo repository.CatalogRepository) *Service {
	return &Service{catalogRepo: catalogRepo}
}

// FilterParams はクエリ文字列から受け取る未検証の絞り込み条件。
type FilterParams struct {
	RestaurantID string
	Category     string
	FoodType     string
	MinRating    string
	SortPrice    string
}

// FilterOptions は絞り込みUIの選択肢。
type FilterOptions struct {
	Restaurants []model.Restaurant
	Categories  []string
	FoodTypes   []model.FoodType
	SortOptions []model.PriceSort
}

// parseFilter は未検証の絞り込み条件を検証してCatalogFilterに変換する。
func parseFilter(params FilterParams) (model.CatalogFilter, error) {
	filter := model.CatalogFilter{
		RestaurantID: params.RestaurantID,
		Category:     params.Category,
	}

	switch model.FoodType(params.FoodType) {
	case "", model.FoodTypeVeg, model.FoodTypeNonVeg:
		filter.FoodType = model.FoodType(params.FoodType)
	default:
		return model.CatalogFilter{}, model.NewInvalidFilterError(
			fmt.Sprintf("foodType=%s", params.FoodType))
	}

	switch model.PriceSort(params.SortPrice) {
	case model.PriceSortNone, model.PriceSortLowToHigh, model.PriceSortHighToLow:
		filter.SortPrice = model.PriceSort(params.SortPrice)
	default:
		return model.CatalogFilter{}, model.NewInvalidFilterError(
			fmt.Sprintf("sortPrice=%s", params.SortPrice))
	}

	if params.MinRating != "" {
		rating, err := strconv.Atoi(params.MinRating)
		if err != nil || rating < 1 || rating > 5 {
			return model.CatalogFilter{}, model.NewInvalidFilterError(
				fmt.Sprintf("rating=%s", params.MinRating))
		}
		filter.MinRating = rating
	}

	return filter, nil
}

// ListItems は絞り込み条件に一致する商品一覧をレストラン名付きで返す。
// 条件のないフィールドは絞り込みに使用しない。
func (s *Service) ListItems(ctx context.Context, params FilterParams) ([]model.ItemWithRestaurant, error) {
	filter, err := parseFilter(params)
	if err != nil {
		return nil, err
	}

	items, err := s.catalogRepo.ListItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	return items, nil
}

// GetFilterOptions は絞り込みUIの選択肢を返す。
func (s *Service) GetFilterOptions(ctx context.Context) (*FilterOptions, error) {
	restaurants, err := s.catalogRepo.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}

	categories, err := s.catalogRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return &FilterOptions{
		Restaurants: restaurants,
		Categories:  categories,
		FoodTypes:   []model.FoodType{model.FoodTypeVeg, model.FoodTypeNonVeg},
		SortOptions: []model.PriceSort{model.PriceSortLowToHigh, model.PriceSortHighToLow},
	}, nil
}
