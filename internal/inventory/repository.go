package inventory

import (
	"context"
	"time"

	"github.com/kusinaops/inventory-service/internal/inventory/dto"
	"github.com/kusinaops/inventory-service/internal/model"
)

type Repository interface {
	GetIngredient(ctx context.Context, id string) (*model.Ingredient, error)
	GetIngredients(ctx context.Context, ids []string) ([]model.Ingredient, error)
	ListLowStock(ctx context.Context, restaurantID string) ([]model.Ingredient, error)

	GetRecipe(ctx context.Context, dishID string) ([]model.DishIngredient, error)

	GetPurchaseOrder(ctx context.Context, id string) (*model.PurchaseOrder, error)
	// MarkPurchaseOrderProcessed stamps processed_at exactly once; it returns
	// false when the order was already processed (receiving idempotency guard).
	MarkPurchaseOrderProcessed(ctx context.Context, id string, at time.Time) (bool, error)
	GetSupplierOffer(ctx context.Context, ingredientID, supplierID string) (*model.IngredientSupplier, error)

	// ApplyStockChange mutates one ingredient row under a row lock and writes
	// the movement audit row in the same transaction. The movement's
	// before/after fields are filled in from the locked read.
	ApplyStockChange(ctx context.Context, change *dto.StockChange, movement *model.StockMovement) (*model.Ingredient, error)
	// ApplyStockChanges applies all changes in one transaction or none,
	// locking ingredient rows in ascending id order. Movements pair with
	// changes by index.
	ApplyStockChanges(ctx context.Context, changes []dto.StockChange, movements []model.StockMovement) ([]model.Ingredient, error)

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
