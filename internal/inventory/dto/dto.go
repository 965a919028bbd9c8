package dto

import "time"

// StockChange is one row-level mutation applied by the repository under a row
// lock. Validation (non-negative stock and packages) happens inside the
// transaction, after the locked read.
type StockChange struct {
	IngredientID string
	StockDelta   float64
	PackageDelta int
}

const (
	ReceiveItemProcessed = "processed"
	ReceiveItemSkipped   = "skipped"
	ReceiveItemFailed    = "failed"
)

type ReceiveItemResult struct {
	ItemID         string  `json:"item_id"`
	IngredientID   string  `json:"ingredient_id,omitempty"`
	Status         string  `json:"status"`
	Reason         string  `json:"reason,omitempty"`
	PackagesAdded  int     `json:"packages_added"`
	QuantityAdded  float64 `json:"quantity_added"`
	StockBefore    float64 `json:"stock_before"`
	StockAfter     float64 `json:"stock_after"`
	PackagesBefore int     `json:"packages_before"`
	PackagesAfter  int     `json:"packages_after"`
}

type ReceiveResult struct {
	PurchaseOrderID string              `json:"purchase_order_id"`
	ItemsProcessed  int                 `json:"items_processed"`
	TotalItems      int                 `json:"total_items"`
	Results         []ReceiveItemResult `json:"results"`
}

type IngredientAvailability struct {
	IngredientID string  `json:"ingredient_id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Required     float64 `json:"required"`
	Available    float64 `json:"available"`
	Shortage     float64 `json:"shortage"`
	Sufficient   bool    `json:"sufficient"`
}

type AvailabilityReport struct {
	DishID      string                   `json:"dish_id"`
	Quantity    int                      `json:"quantity"`
	CanFulfill  bool                     `json:"can_fulfill"`
	Ingredients []IngredientAvailability `json:"ingredients"`
}

type IngredientUpdate struct {
	IngredientID string  `json:"ingredient_id"`
	Name         string  `json:"name"`
	Deducted     float64 `json:"deducted"`
	StockBefore  float64 `json:"stock_before"`
	StockAfter   float64 `json:"stock_after"`
	LowStock     bool    `json:"low_stock"`
}

type DeductionResult struct {
	DishID               string             `json:"dish_id"`
	IngredientsProcessed int                `json:"ingredients_processed"`
	IngredientsUpdated   []IngredientUpdate `json:"ingredients_updated"`
}

type MovementFilters struct {
	RestaurantID  string
	IngredientID  string
	Action        string
	ReferenceType string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PageSize      int
}
