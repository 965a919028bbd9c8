package catalog

import (
	"context"

	"github.com/kusinaops/inventory-service/internal/catalog/dto"
	"github.com/kusinaops/inventory-service/internal/model"
)

type UseCase interface {
	CreateIngredient(ctx context.Context, input *dto.CreateIngredientInput) (*model.Ingredient, error)
	UpdateIngredient(ctx context.Context, input *dto.UpdateIngredientInput) (*model.Ingredient, error)
	GetIngredient(ctx context.Context, restaurantID, id string) (*model.Ingredient, error)
	ListIngredients(ctx context.Context, filters *dto.IngredientFilters) ([]model.Ingredient, int, error)

	CreateDish(ctx context.Context, input *dto.CreateDishInput) (*model.Dish, error)
	GetDish(ctx context.Context, restaurantID, id string) (*model.Dish, error)
	ListDishes(ctx context.Context, filters *dto.DishFilters) ([]model.Dish, int, error)
}
