package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kusinaops/inventory-service/internal/catalog"
	"github.com/kusinaops/inventory-service/internal/catalog/dto"
	"github.com/kusinaops/inventory-service/internal/model"
	"github.com/kusinaops/inventory-service/internal/unit"
	"github.com/kusinaops/inventory-service/pkg/cache"
	"github.com/kusinaops/inventory-service/pkg/logger"
	"github.com/kusinaops/inventory-service/pkg/search"
)

const ingredientIndex = "ingredients"

type catalogUseCase struct {
	repo   catalog.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

func NewCatalogUseCase(repo catalog.Repository, redis *cache.RedisClient, es *search.Client, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:   repo,
		cache:  redis,
		es:     es,
		logger: log,
	}
}

func (uc *catalogUseCase) CreateIngredient(ctx context.Context, input *dto.CreateIngredientInput) (*model.Ingredient, error) {
	if !unit.IsBaseUnit(input.BaseUnit) {
		return nil, fmt.Errorf("base unit must be one of %s, %s or %s", unit.BaseWeight, unit.BaseVolume, unit.BaseCount)
	}
	if input.ReorderLevel < 0 {
		return nil, errors.New("reorder level cannot be negative")
	}

	now := time.Now()
	ing := &model.Ingredient{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		RestaurantID: input.RestaurantID,
		Name:         input.Name,
		BaseUnit:     input.BaseUnit,
		CurrentStock: 0,
		Packages:     0,
		ReorderLevel: input.ReorderLevel,
		IsActive:     true,
	}

	if err := uc.repo.CreateIngredient(ctx, ing); err != nil {
		return nil, err
	}

	go uc.invalidateIngredientCache(context.Background(), input.RestaurantID)
	go uc.syncToElastic(context.Background(), ing)

	return ing, nil
}

func (uc *catalogUseCase) syncToElastic(ctx context.Context, ing *model.Ingredient) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"restaurant_id": { "type": "keyword" },
				"name": { "type": "text" },
				"base_unit": { "type": "keyword" },
				"is_active": { "type": "boolean" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, ingredientIndex, mapping)

	if err := uc.es.Index(ctx, ingredientIndex, ing.ID, ing); err != nil {
		uc.logger.Error("failed to index ingredient", zap.Error(err))
	}
}

func (uc *catalogUseCase) generateCacheKey(filters *dto.IngredientFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ingredients:list:%s:%x", filters.RestaurantID, md5.Sum(data)), nil
}

func (uc *catalogUseCase) invalidateIngredientCache(ctx context.Context, restaurantID string) {
	if uc.cache == nil {
		return
	}
	pattern := fmt.Sprintf("ingredients:list:%s:*", restaurantID)
	keys, err := uc.cache.Client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func (uc *catalogUseCase) UpdateIngredient(ctx context.Context, input *dto.UpdateIngredientInput) (*model.Ingredient, error) {
	ing, err := uc.repo.FindIngredientByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if ing == nil || ing.RestaurantID != input.RestaurantID {
		return nil, model.ErrIngredientNotFound
	}
	if input.ReorderLevel < 0 {
		return nil, errors.New("reorder level cannot be negative")
	}

	// BaseUnit is deliberately not updatable: recorded stock, recipes and
	// offers are all expressed against it.
	ing.Name = input.Name
	ing.ReorderLevel = input.ReorderLevel
	ing.IsActive = input.IsActive
	ing.UpdatedAt = time.Now()

	if err := uc.repo.UpdateIngredient(ctx, ing); err != nil {
		return nil, err
	}

	go uc.invalidateIngredientCache(context.Background(), ing.RestaurantID)
	go uc.syncToElastic(context.Background(), ing)

	return ing, nil
}

func (uc *catalogUseCase) GetIngredient(ctx context.Context, restaurantID, id string) (*model.Ingredient, error) {
	ing, err := uc.repo.FindIngredientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ing == nil || ing.RestaurantID != restaurantID {
		return nil, model.ErrIngredientNotFound
	}
	return ing, nil
}

func (uc *catalogUseCase) ListIngredients(ctx context.Context, filters *dto.IngredientFilters) ([]model.Ingredient, int, error) {
	cacheKey := ""
	if uc.cache != nil {
		if key, err := uc.generateCacheKey(filters); err == nil {
			cacheKey = key
			val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
			if err == nil {
				var result struct {
					Ingredients []model.Ingredient
					Count       int
				}
				if err := json.Unmarshal([]byte(val), &result); err == nil {
					return result.Ingredients, result.Count, nil
				}
			}
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		q := map[string]interface{}{
			"query": map[string]interface{}{
				"bool": map[string]interface{}{
					"must": []map[string]interface{}{
						{
							"match": map[string]interface{}{
								"name": filters.SearchQuery,
							},
						},
						{
							"term": map[string]interface{}{
								"restaurant_id": filters.RestaurantID,
							},
						},
					},
				},
			},
			"from": (filters.Page - 1) * filters.PageSize,
		}
		if filters.PageSize > 0 {
			q["size"] = filters.PageSize
		}

		res, err := uc.es.Search(ctx, ingredientIndex, q)
		if err == nil {
			var found []model.Ingredient
			for _, hit := range res.Hits.Hits {
				var ing model.Ingredient
				if err := json.Unmarshal(hit.Source, &ing); err == nil {
					found = append(found, ing)
				}
			}
			return found, res.Hits.Total.Value, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	ingredients, count, err := uc.repo.FindIngredients(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" {
		cacheData := struct {
			Ingredients []model.Ingredient
			Count       int
		}{
			Ingredients: ingredients,
			Count:       count,
		}
		if data, err := json.Marshal(cacheData); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}

	return ingredients, count, err
}

func (uc *catalogUseCase) CreateDish(ctx context.Context, input *dto.CreateDishInput) (*model.Dish, error) {
	if input.Price < 0 {
		return nil, errors.New("price cannot be negative")
	}

	now := time.Now()
	dishID := uuid.New().String()

	recipe := make([]model.DishIngredient, 0, len(input.Recipe))
	for _, line := range input.Recipe {
		ing, err := uc.repo.FindIngredientByID(ctx, line.IngredientID)
		if err != nil {
			return nil, err
		}
		if ing == nil || ing.RestaurantID != input.RestaurantID {
			return nil, model.ErrIngredientNotFound
		}
		if line.QuantityNeeded <= 0 {
			return nil, fmt.Errorf("recipe quantity for %s must be positive", ing.Name)
		}
		// Reject incompatible recipe units at write time so deduction never
		// hits a conversion failure on clean data.
		if !unit.Compatible(line.UnitOfMeasure, ing.BaseUnit) {
			return nil, &model.IncompatibleUnitsError{From: line.UnitOfMeasure, To: ing.BaseUnit}
		}

		recipe = append(recipe, model.DishIngredient{
			BaseModel: model.BaseModel{
				ID:        uuid.New().String(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			DishID:         dishID,
			IngredientID:   line.IngredientID,
			QuantityNeeded: line.QuantityNeeded,
			UnitOfMeasure:  line.UnitOfMeasure,
			IsOptional:     line.IsOptional,
		})
	}

	dish := &model.Dish{
		BaseModel: model.BaseModel{
			ID:        dishID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		RestaurantID: input.RestaurantID,
		Name:         input.Name,
		Description:  &input.Description,
		Price:        input.Price,
		IsActive:     true,
		Recipe:       recipe,
	}

	if err := uc.repo.CreateDish(ctx, dish); err != nil {
		return nil, err
	}
	return dish, nil
}

func (uc *catalogUseCase) GetDish(ctx context.Context, restaurantID, id string) (*model.Dish, error) {
	dish, err := uc.repo.FindDishByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dish == nil || dish.RestaurantID != restaurantID {
		return nil, model.ErrDishNotFound
	}
	return dish, nil
}

func (uc *catalogUseCase) ListDishes(ctx context.Context, filters *dto.DishFilters) ([]model.Dish, int, error) {
	return uc.repo.FindDishes(ctx, filters)
}
