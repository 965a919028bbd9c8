package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PurchaseOrderStatusDraft     = "draft"
	PurchaseOrderStatusOrdered   = "ordered"
	PurchaseOrderStatusReceived  = "received"
	PurchaseOrderStatusCancelled = "cancelled"
)

type PurchaseOrder struct {
	BaseModel
	RestaurantID         string              `db:"restaurant_id" json:"restaurant_id"`
	SupplierID           string              `db:"supplier_id" json:"supplier_id"`
	OrderNumber          string              `db:"order_number" json:"order_number"`
	Status               string              `db:"status" json:"status"`
	OrderDate            time.Time           `db:"order_date" json:"order_date"`
	ExpectedDeliveryDate *time.Time          `db:"expected_delivery_date" json:"expected_delivery_date"`
	ProcessedAt          *time.Time          `db:"processed_at" json:"processed_at"` // set once stock has been added
	Notes                string              `db:"notes" json:"notes"`
	Items                []PurchaseOrderItem `db:"-" json:"items"` // Joined data
}

// PurchaseOrderItem quantities are counted in package units, not base units.
// Stock is added only for ReceivedQuantity > 0.
type PurchaseOrderItem struct {
	BaseModel
	PurchaseOrderID  string          `db:"purchase_order_id" json:"purchase_order_id"`
	IngredientID     *string         `db:"ingredient_id" json:"ingredient_id"` // Nullable
	OrderedQuantity  int             `db:"ordered_quantity" json:"ordered_quantity"`
	ReceivedQuantity int             `db:"received_quantity" json:"received_quantity"`
	UnitPrice        decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice       decimal.Decimal `db:"total_price" json:"total_price"`
}
