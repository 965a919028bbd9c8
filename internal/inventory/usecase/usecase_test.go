package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kusinaops/inventory-service/internal/inventory"
	"github.com/kusinaops/inventory-service/internal/inventory/dto"
	"github.com/kusinaops/inventory-service/internal/model"
	"github.com/kusinaops/inventory-service/pkg/logger"
)

// fakeRepository mirrors the Postgres repository's validation semantics
// (never-negative stock and packages, all-or-nothing batches) in memory.
type fakeRepository struct {
	mu          sync.Mutex
	ingredients map[string]*model.Ingredient
	recipes     map[string][]model.DishIngredient
	orders      map[string]*model.PurchaseOrder
	offers      map[string]*model.IngredientSupplier // ingredientID + "|" + supplierID
	movements   []model.StockMovement
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		ingredients: map[string]*model.Ingredient{},
		recipes:     map[string][]model.DishIngredient{},
		orders:      map[string]*model.PurchaseOrder{},
		offers:      map[string]*model.IngredientSupplier{},
	}
}

func (r *fakeRepository) GetIngredient(_ context.Context, id string) (*model.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ing, ok := r.ingredients[id]
	if !ok {
		return nil, nil
	}
	copied := *ing
	return &copied, nil
}

func (r *fakeRepository) GetIngredients(_ context.Context, ids []string) ([]model.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Ingredient, 0, len(ids))
	for _, id := range ids {
		if ing, ok := r.ingredients[id]; ok {
			out = append(out, *ing)
		}
	}
	return out, nil
}

func (r *fakeRepository) ListLowStock(_ context.Context, restaurantID string) ([]model.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Ingredient
	for _, ing := range r.ingredients {
		if ing.RestaurantID == restaurantID && ing.LowOnStock() {
			out = append(out, *ing)
		}
	}
	return out, nil
}

func (r *fakeRepository) GetRecipe(_ context.Context, dishID string) ([]model.DishIngredient, error) {
	return r.recipes[dishID], nil
}

func (r *fakeRepository) GetPurchaseOrder(_ context.Context, id string) (*model.PurchaseOrder, error) {
	po, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *po
	return &copied, nil
}

func (r *fakeRepository) MarkPurchaseOrderProcessed(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.orders[id]
	if !ok || po.ProcessedAt != nil {
		return false, nil
	}
	po.ProcessedAt = &at
	po.Status = model.PurchaseOrderStatusReceived
	return true, nil
}

func (r *fakeRepository) GetSupplierOffer(_ context.Context, ingredientID, supplierID string) (*model.IngredientSupplier, error) {
	offer, ok := r.offers[ingredientID+"|"+supplierID]
	if !ok {
		return nil, nil
	}
	return offer, nil
}

func (r *fakeRepository) applyLocked(change *dto.StockChange, movement *model.StockMovement) (*model.Ingredient, error) {
	ing, ok := r.ingredients[change.IngredientID]
	if !ok {
		return nil, model.ErrIngredientNotFound
	}

	newStock := ing.CurrentStock + change.StockDelta
	if newStock < 0 {
		return nil, &model.InsufficientStockError{
			IngredientID: ing.ID,
			Requested:    -change.StockDelta,
			Available:    ing.CurrentStock,
		}
	}
	newPackages := ing.Packages + change.PackageDelta
	if newPackages < 0 {
		return nil, &model.InsufficientPackagesError{
			IngredientID: ing.ID,
			Requested:    -change.PackageDelta,
			Available:    ing.Packages,
		}
	}

	movement.RestaurantID = ing.RestaurantID
	movement.IngredientID = ing.ID
	movement.QuantityBefore = ing.CurrentStock
	movement.QuantityAfter = newStock
	movement.PackagesBefore = ing.Packages
	movement.PackagesAfter = newPackages

	ing.CurrentStock = newStock
	ing.Packages = newPackages
	r.movements = append(r.movements, *movement)

	copied := *ing
	return &copied, nil
}

func (r *fakeRepository) ApplyStockChange(_ context.Context, change *dto.StockChange, movement *model.StockMovement) (*model.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applyLocked(change, movement)
}

func (r *fakeRepository) ApplyStockChanges(_ context.Context, changes []dto.StockChange, movements []model.StockMovement) ([]model.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// All or nothing: snapshot, roll back on the first failure.
	snapshot := make(map[string]model.Ingredient, len(r.ingredients))
	for id, ing := range r.ingredients {
		snapshot[id] = *ing
	}
	movementsBefore := len(r.movements)

	updated := make([]model.Ingredient, 0, len(changes))
	for i := range changes {
		ing, err := r.applyLocked(&changes[i], &movements[i])
		if err != nil {
			for id := range snapshot {
				restored := snapshot[id]
				r.ingredients[id] = &restored
			}
			r.movements = r.movements[:movementsBefore]
			return nil, err
		}
		updated = append(updated, *ing)
	}
	return updated, nil
}

func (r *fakeRepository) ListMovements(_ context.Context, _ *dto.MovementFilters) ([]model.StockMovement, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.StockMovement, len(r.movements))
	copy(out, r.movements)
	return out, len(out), nil
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]string{}}
}

func (l *fakeLocker) AcquireLock(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[key]; taken {
		return false, nil
	}
	l.held[key] = value
	return true, nil
}

func (l *fakeLocker) ReleaseLock(_ context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == value {
		delete(l.held, key)
	}
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []inventory.InventoryChangedEvent
}

func (p *fakePublisher) PublishInventoryChanged(_ context.Context, event *inventory.InventoryChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

func testLogger() logger.ZapLogger {
	return logger.NewZapLogger(&logger.ZapLoggerConfig{
		Encoding:          "console",
		Level:             "fatal",
		DisableCaller:     true,
		DisableStacktrace: true,
	})
}

func newTestUseCase(repo *fakeRepository) (inventory.UseCase, *fakePublisher) {
	pub := &fakePublisher{}
	return NewInventoryUseCase(repo, newFakeLocker(), pub, testLogger()), pub
}

func seedIngredient(repo *fakeRepository, id, baseUnit string, stock float64, packages int) *model.Ingredient {
	ing := &model.Ingredient{
		BaseModel:    model.BaseModel{ID: id},
		RestaurantID: "rest-1",
		Name:         "ingredient " + id,
		BaseUnit:     baseUnit,
		CurrentStock: stock,
		Packages:     packages,
		ReorderLevel: 100,
		IsActive:     true,
	}
	repo.ingredients[id] = ing
	return ing
}

func TestIncreaseStock(t *testing.T) {
	repo := newFakeRepository()
	seedIngredient(repo, "flour", "g", 500, 0)
	uc, pub := newTestUseCase(repo)

	ing, err := uc.IncreaseStock(context.Background(), &dto.StockAdjustmentInput{
		RestaurantID: "rest-1",
		IngredientID: "flour",
		Amount:       250,
		Reason:       "cycle count",
	})
	require.NoError(t, err)
	assert.Equal(t, 750.0, ing.CurrentStock)

	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	assert.Equal(t, model.StockActionIncreased, m.Action)
	assert.Equal(t, 500.0, m.QuantityBefore)
	assert.Equal(t, 750.0, m.QuantityAfter)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "InventoryChanged", pub.events[0].EventType)
	assert.Equal(t, 750.0, pub.events[0].NewStock)
}

func TestDecreaseStock_NeverNegative(t *testing.T) {
	repo := newFakeRepository()
	seedIngredient(repo, "flour", "g", 300, 0)
	uc, _ := newTestUseCase(repo)

	_, err := uc.DecreaseStock(context.Background(), &dto.StockAdjustmentInput{
		RestaurantID: "rest-1",
		IngredientID: "flour",
		Amount:       400,
	})
	require.Error(t, err)

	var insufficient *model.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "flour", insufficient.IngredientID)
	assert.Equal(t, 400.0, insufficient.Requested)
	assert.Equal(t, 300.0, insufficient.Available)

	// Nothing changed and no movement was written.
	assert.Equal(t, 300.0, repo.ingredients["flour"].CurrentStock)
	assert.Empty(t, repo.movements)
}

func TestAdjustStock_RejectsNonPositiveAmount(t *testing.T) {
	repo := newFakeRepository()
	seedIngredient(repo, "flour", "g", 300, 0)
	uc, _ := newTestUseCase(repo)

	_, err := uc.IncreaseStock(context.Background(), &dto.StockAdjustmentInput{
		RestaurantID: "rest-1", IngredientID: "flour", Amount: 0,
	})
	require.Error(t, err)

	_, err = uc.DecreaseStock(context.Background(), &dto.StockAdjustmentInput{
		RestaurantID: "rest-1", IngredientID: "flour", Amount: -5,
	})
	require.Error(t, err)
}

func TestPackages_MoveStockAndCountTogether(t *testing.T) {
	repo := newFakeRepository()
	seedIngredient(repo, "oil", "ml", 1000, 2)
	uc, _ := newTestUseCase(repo)
	ctx := context.Background()

	ing, err := uc.AddPackages(ctx, &dto.PackageAdjustmentInput{
		RestaurantID:       "rest-1",
		IngredientID:       "oil",
		PackageCount:       3,
		ContentsPerPackage: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, 2500.0, ing.CurrentStock)
	assert.Equal(t, 5, ing.Packages)

	ing, err = uc.RemovePackages(ctx, &dto.PackageAdjustmentInput{
		RestaurantID:       "rest-1",
		IngredientID:       "oil",
		PackageCount:       3,
		ContentsPerPackage: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, ing.CurrentStock)
	assert.Equal(t, 2, ing.Packages)
}

func TestRemovePackages_InsufficientPackages(t *testing.T) {
	repo := newFakeRepository()
	seedIngredient(repo, "oil", "ml", 5000, 1)
	uc, _ := newTestUseCase(repo)

	_, err := uc.RemovePackages(context.Background(), &dto.PackageAdjustmentInput{
		RestaurantID:       "rest-1",
		IngredientID:       "oil",
		PackageCount:       2,
		ContentsPerPackage: 500,
	})
	var insufficient *model.InsufficientPackagesError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, repo.ingredients["oil"].Packages)
	assert.Equal(t, 5000.0, repo.ingredients["oil"].CurrentStock)
}
