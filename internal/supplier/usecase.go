package supplier

import (
	"context"

	"github.com/kusinaops/inventory-service/internal/model"
	"github.com/kusinaops/inventory-service/internal/supplier/dto"
)

type UseCase interface {
	CreateSupplier(ctx context.Context, input *dto.CreateSupplierInput) (*model.Supplier, error)
	UpdateSupplier(ctx context.Context, input *dto.UpdateSupplierInput) (*model.Supplier, error)
	GetSupplier(ctx context.Context, restaurantID, id string) (*model.Supplier, error)
	ListSuppliers(ctx context.Context, filters *dto.SupplierFilters) ([]model.Supplier, int, error)

	// UpsertOffer validates that the offer's contents unit is convertible to
	// the ingredient's base unit before persisting.
	UpsertOffer(ctx context.Context, input *dto.UpsertOfferInput) (*model.IngredientSupplier, error)
	ListOffers(ctx context.Context, restaurantID, ingredientID string) ([]model.IngredientSupplier, error)
}
