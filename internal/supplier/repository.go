package supplier

import (
	"context"

	"github.com/kusinaops/inventory-service/internal/model"
	"github.com/kusinaops/inventory-service/internal/supplier/dto"
)

type Repository interface {
	Create(ctx context.Context, s *model.Supplier) error
	Update(ctx context.Context, s *model.Supplier) error
	FindByID(ctx context.Context, id string) (*model.Supplier, error)
	FindAll(ctx context.Context, filters *dto.SupplierFilters) ([]model.Supplier, int, error)

	UpsertOffer(ctx context.Context, offer *model.IngredientSupplier) error
	ListOffers(ctx context.Context, ingredientID string) ([]model.IngredientSupplier, error)

	FindIngredientByID(ctx context.Context, id string) (*model.Ingredient, error)
}
