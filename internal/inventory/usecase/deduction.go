package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kusinaops/inventory-service/internal/inventory/dto"
	"github.com/kusinaops/inventory-service/internal/model"
	"github.com/kusinaops/inventory-service/internal/unit"
)

// requirement is one recipe line expanded into the ingredient's base unit.
type requirement struct {
	ingredient model.Ingredient
	required   float64
}

// requiredQuantities expands a dish sale into base-unit requirements per
// ingredient. Both the initial deduction and later quantity increases go
// through here, so the unit-conversion logic cannot drift between paths.
func (uc *inventoryUseCase) requiredQuantities(ctx context.Context, input *dto.DishSaleInput) ([]requirement, error) {
	if input.Quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	recipe, err := uc.repo.GetRecipe(ctx, input.DishID)
	if err != nil {
		return nil, err
	}
	if len(recipe) == 0 {
		// A dish with no recipe lines is trivially fulfillable.
		return nil, nil
	}

	excluded := make(map[string]bool, len(input.ExcludedIngredientIDs))
	for _, id := range input.ExcludedIngredientIDs {
		excluded[id] = true
	}

	multiplier := input.VariantMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	ids := make([]string, 0, len(recipe))
	for _, line := range recipe {
		if !excluded[line.IngredientID] {
			ids = append(ids, line.IngredientID)
		}
	}

	ingredients, err := uc.repo.GetIngredients(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byID[ing.ID] = ing
	}

	reqs := make([]requirement, 0, len(ids))
	for _, line := range recipe {
		if excluded[line.IngredientID] {
			continue
		}
		ing, ok := byID[line.IngredientID]
		if !ok {
			return nil, fmt.Errorf("recipe line %s: %w", line.ID, model.ErrIngredientNotFound)
		}

		perServing, err := unit.Convert(line.QuantityNeeded, line.UnitOfMeasure, ing.BaseUnit)
		if err != nil {
			// Recipe units are validated at write time, so this indicates
			// data drift. Surface it, never coerce.
			return nil, fmt.Errorf("recipe line %s: %w", line.ID, err)
		}

		reqs = append(reqs, requirement{
			ingredient: ing,
			required:   perServing * multiplier * float64(input.Quantity),
		})
	}

	return reqs, nil
}

func (uc *inventoryUseCase) CheckStockAvailability(ctx context.Context, input *dto.DishSaleInput) (*dto.AvailabilityReport, error) {
	reqs, err := uc.requiredQuantities(ctx, input)
	if err != nil {
		return nil, err
	}

	report := &dto.AvailabilityReport{
		DishID:      input.DishID,
		Quantity:    input.Quantity,
		CanFulfill:  true,
		Ingredients: make([]dto.IngredientAvailability, 0, len(reqs)),
	}

	for _, req := range reqs {
		entry := dto.IngredientAvailability{
			IngredientID: req.ingredient.ID,
			Name:         req.ingredient.Name,
			Unit:         req.ingredient.BaseUnit,
			Required:     req.required,
			Available:    req.ingredient.CurrentStock,
			Sufficient:   req.required <= req.ingredient.CurrentStock,
		}
		if !entry.Sufficient {
			entry.Shortage = req.required - req.ingredient.CurrentStock
			report.CanFulfill = false
		}
		report.Ingredients = append(report.Ingredients, entry)
	}

	return report, nil
}

// SubtractStockFromDishSale deducts a sold dish's recipe from stock. The
// pre-flight check rejects the whole sale before any mutation when an
// ingredient is short; the commit itself is a single transaction, so a race
// that slips past the pre-flight still rolls back the entire batch.
func (uc *inventoryUseCase) SubtractStockFromDishSale(ctx context.Context, input *dto.DishSaleInput) (*dto.DeductionResult, error) {
	reqs, err := uc.requiredQuantities(ctx, input)
	if err != nil {
		return nil, err
	}

	result := &dto.DeductionResult{
		DishID:             input.DishID,
		IngredientsUpdated: make([]dto.IngredientUpdate, 0, len(reqs)),
	}
	if len(reqs) == 0 {
		return result, nil
	}

	// Pre-flight: reject before mutating anything.
	for _, req := range reqs {
		if req.required > req.ingredient.CurrentStock {
			uc.logger.Warn("dish sale rejected, insufficient stock",
				zap.String("dish_id", input.DishID),
				zap.String("ingredient_id", req.ingredient.ID),
				zap.Float64("required", req.required),
				zap.Float64("available", req.ingredient.CurrentStock),
			)
			return nil, &model.InsufficientStockError{
				IngredientID: req.ingredient.ID,
				Requested:    req.required,
				Available:    req.ingredient.CurrentStock,
			}
		}
	}

	now := time.Now()
	changes := make([]dto.StockChange, len(reqs))
	movements := make([]model.StockMovement, len(reqs))
	for i, req := range reqs {
		changes[i] = dto.StockChange{
			IngredientID: req.ingredient.ID,
			StockDelta:   -req.required,
		}
		movements[i] = *buildMovement(
			model.StockActionDecreased, -req.required,
			"dish_sale", input.ReferenceID,
			fmt.Sprintf("dish %s x%d", input.DishID, input.Quantity),
			input.UserID, now,
		)
	}

	updated, err := uc.repo.ApplyStockChanges(ctx, changes, movements)
	if err != nil {
		return nil, err
	}

	result.IngredientsProcessed = len(updated)
	for i := range updated {
		uc.afterMutation(ctx, &updated[i], &movements[i])
		result.IngredientsUpdated = append(result.IngredientsUpdated, dto.IngredientUpdate{
			IngredientID: updated[i].ID,
			Name:         updated[i].Name,
			Deducted:     reqs[i].required,
			StockBefore:  movements[i].QuantityBefore,
			StockAfter:   movements[i].QuantityAfter,
			LowStock:     updated[i].LowOnStock(),
		})
	}

	return result, nil
}
