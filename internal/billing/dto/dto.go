package dto

import "github.com/kusinaops/inventory-service/internal/model"

type PaymentResult struct {
	Payment *model.SupplierPayment `json:"payment"`
	Bill    *model.SupplierBill    `json:"bill"`
}

type BillFilters struct {
	RestaurantID string
	SupplierID   string
	Status       string
	Page         int
	PageSize     int
}
