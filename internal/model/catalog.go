package model

// FoodType は商品の食材区分を表す。
type FoodType string

const (
	// FoodTypeVeg はベジタリアン向け商品を示す。
	FoodTypeVeg FoodType = "veg"
	// FoodTypeNonVeg は非ベジタリアン商品を示す。
	FoodTypeNonVeg FoodType = "non-veg"
)

// Restaurant は掲載レストランを表す。
type Restaurant struct {
	ID        string
	Name      string
	Address   string
	Contact   string
	Rating    int // 1〜5
	Cuisine   string
	IsVegOnly bool
}

// Item はレストランが提供するメニュー商品を表す。
type Item struct {
	ID           string
	RestaurantID string
	Name         string
	Category     string
	Rating       int // 1〜5
	FoodType     FoodType
	Price        int // 最小通貨単位（円）
	Quantity     int
	ImageURL     string
	Description  string
}

// PriceSort は商品一覧の価格ソート順を表す。
type PriceSort string

const (
	// PriceSortNone はソート指定なしを示す。
	PriceSortNone PriceSort = ""
	// PriceSortLowToHigh は価格昇順を示す。
	PriceSortLowToHigh PriceSort = "lowToHigh"
	// PriceSortHighToLow は価格降順を示す。
	PriceSortHighToLow PriceSort = "highToLow"
)

// CatalogFilter は商品一覧の絞り込み条件を表す。
// ゼロ値のフィールドは条件に含めない。
type CatalogFilter struct {
	RestaurantID string
	Category     string
	FoodType     FoodType
	MinRating    int
	SortPrice    PriceSort
}

// ItemWithRestaurant は商品とレストラン名を結合した一覧表示用の構造体。
type ItemWithRestaurant struct {
	Item
	RestaurantName string
}
