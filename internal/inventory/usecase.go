package inventory

import (
	"context"

	"github.com/kusinaops/inventory-service/internal/inventory/dto"
	"github.com/kusinaops/inventory-service/internal/model"
)

type UseCase interface {
	// Ledger operations. Each is atomic with respect to the ingredient row
	// and emits an inventory-changed event on success.
	IncreaseStock(ctx context.Context, input *dto.StockAdjustmentInput) (*model.Ingredient, error)
	DecreaseStock(ctx context.Context, input *dto.StockAdjustmentInput) (*model.Ingredient, error)
	AddPackages(ctx context.Context, input *dto.PackageAdjustmentInput) (*model.Ingredient, error)
	RemovePackages(ctx context.Context, input *dto.PackageAdjustmentInput) (*model.Ingredient, error)

	// AddStockFromPurchaseOrder receives a purchase order: per-item partial
	// success, exactly-once per order.
	AddStockFromPurchaseOrder(ctx context.Context, restaurantID, purchaseOrderID string) (*dto.ReceiveResult, error)

	// SubtractStockFromDishSale deducts a dish's recipe from stock,
	// all-or-nothing across its ingredients.
	SubtractStockFromDishSale(ctx context.Context, input *dto.DishSaleInput) (*dto.DeductionResult, error)
	CheckStockAvailability(ctx context.Context, input *dto.DishSaleInput) (*dto.AvailabilityReport, error)

	GetLowStockIngredients(ctx context.Context, restaurantID string) ([]model.Ingredient, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
