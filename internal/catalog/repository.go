package catalog

import (
	"context"

	"github.com/kusinaops/inventory-service/internal/catalog/dto"
	"github.com/kusinaops/inventory-service/internal/model"
)

type Repository interface {
	CreateIngredient(ctx context.Context, ing *model.Ingredient) error
	UpdateIngredient(ctx context.Context, ing *model.Ingredient) error
	FindIngredientByID(ctx context.Context, id string) (*model.Ingredient, error)
	FindIngredients(ctx context.Context, filters *dto.IngredientFilters) ([]model.Ingredient, int, error)

	// CreateDish inserts the dish and its recipe lines in one transaction.
	CreateDish(ctx context.Context, dish *model.Dish) error
	FindDishByID(ctx context.Context, id string) (*model.Dish, error)
	FindDishes(ctx context.Context, filters *dto.DishFilters) ([]model.Dish, int, error)
}
