package model

import "time"

// Ingredient tracks stock in its base unit (g, ml or pcs). BaseUnit is fixed
// at creation; CurrentStock never goes below zero.
type Ingredient struct {
	BaseModel
	RestaurantID string  `db:"restaurant_id" json:"restaurant_id"`
	Name         string  `db:"name" json:"name"`
	BaseUnit     string  `db:"base_unit" json:"base_unit"`
	CurrentStock float64 `db:"current_stock" json:"current_stock"`
	Packages     int     `db:"packages" json:"packages"`
	ReorderLevel float64 `db:"reorder_level" json:"reorder_level"`
	IsActive     bool    `db:"is_active" json:"is_active"`
}

// LowOnStock reports whether the ingredient is at or below its reorder level.
func (i *Ingredient) LowOnStock() bool {
	return i.CurrentStock <= i.ReorderLevel
}

// Stock mutation actions, also used on outbound inventory-changed events.
const (
	StockActionIncreased = "increased"
	StockActionDecreased = "decreased"
	StockActionUpdated   = "updated"
)

// StockMovement is the append-only audit row written in the same transaction
// as every stock mutation.
type StockMovement struct {
	ID             string    `db:"id" json:"id"`
	RestaurantID   string    `db:"restaurant_id" json:"restaurant_id"`
	IngredientID   string    `db:"ingredient_id" json:"ingredient_id"`
	Action         string    `db:"action" json:"action"`
	QuantityChange float64   `db:"quantity_change" json:"quantity_change"`
	QuantityBefore float64   `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  float64   `db:"quantity_after" json:"quantity_after"`
	PackagesBefore int       `db:"packages_before" json:"packages_before"`
	PackagesAfter  int       `db:"packages_after" json:"packages_after"`
	ReferenceType  *string   `db:"reference_type" json:"reference_type"` // 'purchase_order', 'dish_sale', 'manual'
	ReferenceID    *string   `db:"reference_id" json:"reference_id"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
