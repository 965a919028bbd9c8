package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kusinaops/inventory-service/internal/inventory/dto"
	"github.com/kusinaops/inventory-service/internal/model"
)

func seedOffer(repo *fakeRepository, ingredientID, supplierID string, contentsQty float64, contentsUnit string) {
	repo.offers[ingredientID+"|"+supplierID] = &model.IngredientSupplier{
		IngredientID:            ingredientID,
		SupplierID:              supplierID,
		PackageUnit:             "sack",
		PackageContentsQuantity: contentsQty,
		PackageContentsUnit:     contentsUnit,
		IsActive:                true,
	}
}

func seedPurchaseOrder(repo *fakeRepository, id string, items ...model.PurchaseOrderItem) *model.PurchaseOrder {
	po := &model.PurchaseOrder{
		BaseModel:    model.BaseModel{ID: id},
		RestaurantID: "rest-1",
		SupplierID:   "sup-1",
		OrderNumber:  "PO-0042",
		Status:       model.PurchaseOrderStatusOrdered,
		OrderDate:    time.Now(),
		Items:        items,
	}
	repo.orders[id] = po
	return po
}

func poItem(id, ingredientID string, received int) model.PurchaseOrderItem {
	item := model.PurchaseOrderItem{
		BaseModel:        model.BaseModel{ID: id},
		PurchaseOrderID:  "po-1",
		OrderedQuantity:  received,
		ReceivedQuantity: received,
	}
	if ingredientID != "" {
		item.IngredientID = &ingredientID
	}
	return item
}

func TestReceivePurchaseOrder_ConvertsPackagesToBaseUnits(t *testing.T) {
	repo := newFakeRepository()
	seedIngredient(repo, "rice", "g", 50000, 2)
	seedOffer(repo, "rice", "sup-1", 25, "kg")
	seedPurchaseOrder(repo, "po-1", poItem("item-1", "rice", 5))
	uc, _ := newTestUseCase(repo)

	result, err := uc.AddStockFromPurchaseOrder(context.Background(), "rest-1", "po-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.ItemsProcessed)
	require.Len(t, result.Results, 1)
	item := result.Results[0]
	assert.Equal(t, dto.ReceiveItemProcessed, item.Status)
	assert.Equal(t, 5, item.PackagesAdded)
	assert.InDelta(t, 125000, item.QuantityAdded, 1e-9)
	assert.InDelta(t, 50000, item.StockBefore, 1e-9)
	assert.InDelta(t, 175000, item.StockAfter, 1e-9)

	ing := repo.ingredients["rice"]
	assert.InDelta(t, 175000, ing.CurrentStock, 1e-9)
	assert.Equal(t, 7, ing.Packages)
}

func TestReceivePurchaseOrder_SecondReceiveRejected(t *testing.T) {
	repo := newFakeRepository()
	seedIngredient(repo, "rice", "g", 0, 0)
	seedOffer(repo, "rice", "sup-1", 25, "kg")
	seedPurchaseOrder(repo, "po-1", poItem("item-1", "rice", 2))
	uc, _ := newTestUseCase(repo)
	ctx := context.Background()

	_, err := uc.AddStockFromPurchaseOrder(ctx, "rest-1", "po-1")
	require.NoError(t, err)

	_, err = uc.AddStockFromPurchaseOrder(ctx, "rest-1", "po-1")
	require.ErrorIs(t, err, model.ErrPurchaseOrderProcessed)

	// Stock was added exactly once.
	assert.InDelta(t, 50000, repo.ingredients["rice"].CurrentStock, 1e-9)
}

func TestReceivePurchaseOrder_PerItemOutcomes(t *testing.T) {
	repo := newFakeRepository()
	seedIngredient(repo, "rice", "g", 0, 0)
	seedOffer(repo, "rice", "sup-1", 25, "kg")
	seedIngredient(repo, "vinegar", "ml", 0, 0)
	// vinegar has no offer, so its package contents are unknown
	seedPurchaseOrder(repo, "po-1",
		poItem("item-1", "rice", 2),
		poItem("item-2", "vinegar", 3),
		poItem("item-3", "", 4),
		poItem("item-4", "ghost", 1),
		poItem("item-5", "rice", 0),
	)
	uc, _ := newTestUseCase(repo)

	result, err := uc.AddStockFromPurchaseOrder(context.Background(), "rest-1", "po-1")
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalItems)
	assert.Equal(t, 1, result.ItemsProcessed)

	byItem := map[string]dto.ReceiveItemResult{}
	for _, r := range result.Results {
		byItem[r.ItemID] = r
	}

	assert.Equal(t, dto.ReceiveItemProcessed, byItem["item-1"].Status)
	assert.Equal(t, dto.ReceiveItemFailed, byItem["item-2"].Status)
	assert.Contains(t, byItem["item-2"].Reason, "package contents")
	assert.Equal(t, dto.ReceiveItemSkipped, byItem["item-3"].Status)
	assert.Equal(t, dto.ReceiveItemFailed, byItem["item-4"].Status)
	assert.Equal(t, dto.ReceiveItemSkipped, byItem["item-5"].Status)

	// Failed items cannot come back through this path (the order is stamped
	// processed), so their reasons must name the manual recovery route.
	assert.Contains(t, byItem["item-2"].Reason, "manual package adjustment")
	assert.Contains(t, byItem["item-4"].Reason, "manual package adjustment")

	// The good item landed despite its failing siblings.
	assert.InDelta(t, 50000, repo.ingredients["rice"].CurrentStock, 1e-9)
	assert.Equal(t, 0.0, repo.ingredients["vinegar"].CurrentStock)
}

func TestReceivePurchaseOrder_WrongTenant(t *testing.T) {
	repo := newFakeRepository()
	seedPurchaseOrder(repo, "po-1", poItem("item-1", "rice", 1))
	uc, _ := newTestUseCase(repo)

	_, err := uc.AddStockFromPurchaseOrder(context.Background(), "other-restaurant", "po-1")
	require.ErrorIs(t, err, model.ErrPurchaseOrderNotFound)
	assert.Nil(t, repo.orders["po-1"].ProcessedAt)
}

func TestReceivePurchaseOrder_OfferUnitIncompatible(t *testing.T) {
	repo := newFakeRepository()
	seedIngredient(repo, "rice", "g", 0, 0)
	seedOffer(repo, "rice", "sup-1", 2, "l") // volume offer against a weight ingredient
	seedPurchaseOrder(repo, "po-1", poItem("item-1", "rice", 2))
	uc, _ := newTestUseCase(repo)

	result, err := uc.AddStockFromPurchaseOrder(context.Background(), "rest-1", "po-1")
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, dto.ReceiveItemFailed, result.Results[0].Status)
	assert.Contains(t, result.Results[0].Reason, "incompatible units")
	assert.Equal(t, 0.0, repo.ingredients["rice"].CurrentStock)
}
