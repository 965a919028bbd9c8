package model

type Dish struct {
	BaseModel
	RestaurantID string           `db:"restaurant_id" json:"restaurant_id"`
	Name         string           `db:"name" json:"name"`
	Description  *string          `db:"description" json:"description"`
	Price        float64          `db:"price" json:"price"`
	IsActive     bool             `db:"is_active" json:"is_active"`
	Recipe       []DishIngredient `db:"-" json:"recipe"` // Joined data
}

// DishIngredient is one recipe line: how much of an ingredient a single
// serving consumes, in the recipe's own unit (not necessarily the
// ingredient's base unit).
type DishIngredient struct {
	BaseModel
	DishID         string  `db:"dish_id" json:"dish_id"`
	IngredientID   string  `db:"ingredient_id" json:"ingredient_id"`
	QuantityNeeded float64 `db:"quantity_needed" json:"quantity_needed"`
	UnitOfMeasure  string  `db:"unit_of_measure" json:"unit_of_measure"`
	IsOptional     bool    `db:"is_optional" json:"is_optional"`
}
