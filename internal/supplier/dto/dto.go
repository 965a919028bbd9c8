package dto

type SupplierFilters struct {
	RestaurantID string
	ActiveOnly   bool
	Page         int
	PageSize     int
}
