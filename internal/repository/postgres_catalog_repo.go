package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/hitoshi/mogumogu/internal/model"
)

// PostgresCatalogRepo はPostgreSQLを使用した商品・レストランリポジトリ。
type PostgresCatalogRepo struct {
	db *sql.DB
}

// NewPostgresCatalogRepo はPostgresCatalogRepoを生成する。
func NewPostgresCatalogRepo(db *sql.DB) *PostgresCatalogRepo {
	return &PostgresCatalogRepo{db: db}
}

// ListItems はフィルタ条件に一致する商品一覧をレストラン名付きで返す。
// ゼロ値のフィルタフィールドは条件に含めない。価格ソートは指定時のみ適用する。
func (r *PostgresCatalogRepo) ListItems(ctx context.Context, filter model.CatalogFilter) ([]model.ItemWithRestaurant, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT i.id, i.restaurant_id, i.name, i.category, i.rating, i.food_type,
		i.price, i.quantity, i.image_url, i.description, r.name
		FROM items i JOIN restaurants r ON r.id = i.restaurant_id`)

	var conds []string
	var args []interface{}

	if filter.RestaurantID != "" {
		args = append(args, filter.RestaurantID)
		conds = append(conds, "i.restaurant_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, "i.category = $"+strconv.Itoa(len(args)))
	}
	if filter.FoodType != "" {
		args = append(args, string(filter.FoodType))
		conds = append(conds, "i.food_type = $"+strconv.Itoa(len(args)))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		conds = append(conds, "i.rating >= $"+strconv.Itoa(len(args)))
	}

	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	switch filter.SortPrice {
	case model.PriceSortLowToHigh:
		sb.WriteString(" ORDER BY i.price ASC")
	case model.PriceSortHighToLow:
		sb.WriteString(" ORDER BY i.price DESC")
	default:
		sb.WriteString(" ORDER BY i.name ASC")
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []model.ItemWithRestaurant
	for rows.Next() {
		var it model.ItemWithRestaurant
		if err := rows.Scan(
			&it.ID, &it.RestaurantID, &it.Name, &it.Category, &it.Rating,
			&it.FoodType, &it.Price, &it.Quantity, &it.ImageURL,
			&it.Description, &it.RestaurantName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

// ListRestaurants は全レストランを名前順で返す。
func (r *PostgresCatalogRepo) ListRestaurants(ctx context.Context) ([]model.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, address, contact, rating, cuisine, is_veg_only
		 FROM restaurants ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []model.Restaurant
	for rows.Next() {
		var rest model.Restaurant
		if err := rows.Scan(
			&rest.ID, &rest.Name, &rest.Address, &rest.Contact,
			&rest.Rating, &rest.Cuisine, &rest.IsVegOnly,
		); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate restaurants: %w", err)
	}

	return restaurants, nil
}

// ListCategories は商品カテゴリの重複なし一覧を返す。
func (r *PostgresCatalogRepo) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM items ORDER BY category ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// compile-time interface check
var _ CatalogRepository = (*PostgresCatalogRepo)(nil)
