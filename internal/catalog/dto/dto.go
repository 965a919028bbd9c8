package dto

type IngredientFilters struct {
	RestaurantID string
	SearchQuery  string
	ActiveOnly   bool
	Page         int
	PageSize     int
}

type DishFilters struct {
	RestaurantID string
	ActiveOnly   bool
	Page         int
	PageSize     int
}
