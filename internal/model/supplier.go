package model

import "github.com/shopspring/decimal"

type Supplier struct {
	BaseModel
	RestaurantID  string  `db:"restaurant_id" json:"restaurant_id"`
	Name          string  `db:"name" json:"name"`
	ContactPerson *string `db:"contact_person" json:"contact_person"`
	Email         *string `db:"email" json:"email"`
	Phone         *string `db:"phone" json:"phone"`
	Address       *string `db:"address" json:"address"`
	PaymentTerms  string  `db:"payment_terms" json:"payment_terms"` // COD, NET_7, NET_15, NET_30, NET_60, NET_90
	IsActive      bool    `db:"is_active" json:"is_active"`
}

// IngredientSupplier is a supplier's offer for one ingredient. A "package" is
// the purchase unit; PackageContentsQuantity/Unit describe how much base-unit
// content one package holds and must be convertible to the ingredient's base
// unit (same unit family).
type IngredientSupplier struct {
	BaseModel
	IngredientID            string          `db:"ingredient_id" json:"ingredient_id"`
	SupplierID              string          `db:"supplier_id" json:"supplier_id"`
	PackageUnit             string          `db:"package_unit" json:"package_unit"` // display label, e.g. "sack"
	PackageQuantity         float64         `db:"package_quantity" json:"package_quantity"`
	PackageContentsQuantity float64         `db:"package_contents_quantity" json:"package_contents_quantity"`
	PackageContentsUnit     string          `db:"package_contents_unit" json:"package_contents_unit"`
	PackagePrice            decimal.Decimal `db:"package_price" json:"package_price"`
	MinimumOrderQuantity    float64         `db:"minimum_order_quantity" json:"minimum_order_quantity"`
	IsActive                bool            `db:"is_active" json:"is_active"`
}
