package dto

import "github.com/shopspring/decimal"

type CreateSupplierInput struct {
	RestaurantID  string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	PaymentTerms  string
}

type UpdateSupplierInput struct {
	ID            string
	RestaurantID  string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	PaymentTerms  string
	IsActive      bool
}

// UpsertOfferInput creates or replaces a supplier's offer for an ingredient.
type UpsertOfferInput struct {
	RestaurantID            string
	IngredientID            string
	SupplierID              string
	PackageUnit             string
	PackageQuantity         float64
	PackageContentsQuantity float64
	PackageContentsUnit     string
	PackagePrice            decimal.Decimal
	MinimumOrderQuantity    float64
	IsActive                bool
}
