package dto

// StockAdjustmentInput drives a plain increase/decrease of an ingredient's
// stock, in the ingredient's base unit.
type StockAdjustmentInput struct {
	RestaurantID  string
	IngredientID  string
	Amount        float64 // base units, must be positive
	Reason        string
	ReferenceID   string
	ReferenceType string // 'purchase_order', 'dish_sale', 'manual'
	UserID        string
}

// PackageAdjustmentInput adds or removes whole packages; stock moves by
// PackageCount * ContentsPerPackage in the same logical operation.
type PackageAdjustmentInput struct {
	RestaurantID       string
	IngredientID       string
	PackageCount       int
	ContentsPerPackage float64 // base units per package
	Reason             string
	ReferenceID        string
	ReferenceType      string
	UserID             string
}

// DishSaleInput describes one dish sale. For a quantity increase on an
// existing order item the caller passes only the additional quantity, so both
// paths share the same requirement computation.
type DishSaleInput struct {
	RestaurantID          string
	DishID                string
	Quantity              int
	VariantMultiplier     float64 // 0 means 1
	ExcludedIngredientIDs []string
	ReferenceID           string // order item id
	UserID                string
}
