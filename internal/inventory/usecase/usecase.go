package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kusinaops/inventory-service/internal/inventory"
	"github.com/kusinaops/inventory-service/internal/inventory/dto"
	"github.com/kusinaops/inventory-service/internal/model"
	"github.com/kusinaops/inventory-service/pkg/cache"
	"github.com/kusinaops/inventory-service/pkg/logger"
)

type inventoryUseCase struct {
	repo      inventory.Repository
	cache     cache.Locker
	publisher inventory.Publisher
	logger    logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, locker cache.Locker, publisher inventory.Publisher, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:      repo,
		cache:     locker,
		publisher: publisher,
		logger:    log,
	}
}

// withIngredientLock serializes mutations of one ingredient across service
// instances. The database row lock still guards correctness; this keeps
// contention out of the transaction.
func (uc *inventoryUseCase) withIngredientLock(ctx context.Context, restaurantID, ingredientID string, fn func() error) error {
	lockKey := fmt.Sprintf("lock:ingredient:%s:%s", restaurantID, ingredientID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond) // wait before retry
	}
	if !acquired {
		return model.ErrLockNotAcquired
	}
	defer uc.cache.ReleaseLock(ctx, lockKey, lockValue)

	return fn()
}

func buildMovement(action string, quantityChange float64, refType, refID, notes, userID string, now time.Time) *model.StockMovement {
	var refTypePtr, refIDPtr, createdBy *string
	if refType != "" {
		refTypePtr = &refType
	}
	if refID != "" {
		refIDPtr = &refID
	}
	if userID != "" && userID != "unknown" {
		createdBy = &userID
	}

	return &model.StockMovement{
		ID:             uuid.New().String(),
		Action:         action,
		QuantityChange: quantityChange,
		ReferenceType:  refTypePtr,
		ReferenceID:    refIDPtr,
		Notes:          notes,
		CreatedBy:      createdBy,
		CreatedAt:      now,
	}
}

// afterMutation publishes the inventory-changed event and logs the outcome.
// The mutation is already committed, so event failures are logged, not
// returned.
func (uc *inventoryUseCase) afterMutation(ctx context.Context, ing *model.Ingredient, movement *model.StockMovement) {
	event := &inventory.InventoryChangedEvent{
		EventID:       uuid.New().String(),
		EventType:     "InventoryChanged",
		RestaurantID:  ing.RestaurantID,
		IngredientID:  ing.ID,
		Action:        movement.Action,
		PreviousStock: movement.QuantityBefore,
		NewStock:      movement.QuantityAfter,
		Timestamp:     movement.CreatedAt,
	}
	if err := uc.publisher.PublishInventoryChanged(ctx, event); err != nil {
		uc.logger.Error("failed to publish inventory changed event",
			zap.String("ingredient_id", ing.ID),
			zap.Error(err),
		)
	}

	uc.logger.Info("stock mutated",
		zap.String("ingredient_id", ing.ID),
		zap.String("action", movement.Action),
		zap.Float64("quantity_before", movement.QuantityBefore),
		zap.Float64("quantity_after", movement.QuantityAfter),
		zap.Int("packages_after", movement.PackagesAfter),
	)

	if ing.LowOnStock() {
		uc.logger.Warn("ingredient at or below reorder level",
			zap.String("ingredient_id", ing.ID),
			zap.String("name", ing.Name),
			zap.Float64("current_stock", ing.CurrentStock),
			zap.Float64("reorder_level", ing.ReorderLevel),
		)
	}
}

func (uc *inventoryUseCase) adjustStock(ctx context.Context, input *dto.StockAdjustmentInput, delta float64, action string) (*model.Ingredient, error) {
	if input.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}

	var ing *model.Ingredient
	movement := buildMovement(action, delta, input.ReferenceType, input.ReferenceID, input.Reason, input.UserID, time.Now())

	err := uc.withIngredientLock(ctx, input.RestaurantID, input.IngredientID, func() error {
		var err error
		ing, err = uc.repo.ApplyStockChange(ctx, &dto.StockChange{
			IngredientID: input.IngredientID,
			StockDelta:   delta,
		}, movement)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.afterMutation(ctx, ing, movement)
	return ing, nil
}

func (uc *inventoryUseCase) IncreaseStock(ctx context.Context, input *dto.StockAdjustmentInput) (*model.Ingredient, error) {
	return uc.adjustStock(ctx, input, input.Amount, model.StockActionIncreased)
}

func (uc *inventoryUseCase) DecreaseStock(ctx context.Context, input *dto.StockAdjustmentInput) (*model.Ingredient, error) {
	return uc.adjustStock(ctx, input, -input.Amount, model.StockActionDecreased)
}

func (uc *inventoryUseCase) adjustPackages(ctx context.Context, input *dto.PackageAdjustmentInput, sign int, action string) (*model.Ingredient, error) {
	if input.PackageCount <= 0 {
		return nil, errors.New("package count must be positive")
	}
	if input.ContentsPerPackage <= 0 {
		return nil, errors.New("package contents must be positive")
	}

	stockDelta := float64(sign) * float64(input.PackageCount) * input.ContentsPerPackage
	movement := buildMovement(action, stockDelta, input.ReferenceType, input.ReferenceID, input.Reason, input.UserID, time.Now())

	var ing *model.Ingredient
	err := uc.withIngredientLock(ctx, input.RestaurantID, input.IngredientID, func() error {
		var err error
		ing, err = uc.repo.ApplyStockChange(ctx, &dto.StockChange{
			IngredientID: input.IngredientID,
			StockDelta:   stockDelta,
			PackageDelta: sign * input.PackageCount,
		}, movement)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.afterMutation(ctx, ing, movement)
	return ing, nil
}

func (uc *inventoryUseCase) AddPackages(ctx context.Context, input *dto.PackageAdjustmentInput) (*model.Ingredient, error) {
	return uc.adjustPackages(ctx, input, 1, model.StockActionIncreased)
}

func (uc *inventoryUseCase) RemovePackages(ctx context.Context, input *dto.PackageAdjustmentInput) (*model.Ingredient, error) {
	return uc.adjustPackages(ctx, input, -1, model.StockActionDecreased)
}

func (uc *inventoryUseCase) GetLowStockIngredients(ctx context.Context, restaurantID string) ([]model.Ingredient, error) {
	return uc.repo.ListLowStock(ctx, restaurantID)
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}
