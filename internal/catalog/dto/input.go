package dto

type CreateIngredientInput struct {
	RestaurantID string
	Name         string
	BaseUnit     string // must be one of the canonical base units (g, ml, pcs)
	ReorderLevel float64
}

type UpdateIngredientInput struct {
	ID           string
	RestaurantID string
	Name         string
	ReorderLevel float64
	IsActive     bool
}

type RecipeLineInput struct {
	IngredientID   string
	QuantityNeeded float64
	UnitOfMeasure  string
	IsOptional     bool
}

type CreateDishInput struct {
	RestaurantID string
	Name         string
	Description  string
	Price        float64
	Recipe       []RecipeLineInput
}
