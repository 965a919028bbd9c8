package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kusinaops/inventory-service/internal/inventory/dto"
	"github.com/kusinaops/inventory-service/internal/model"
	"github.com/kusinaops/inventory-service/internal/unit"
)

// AddStockFromPurchaseOrder receives a purchase order into stock. Items are
// processed independently: one item failing does not abort its siblings, and
// every outcome is reported in the result. The processed_at stamp is taken
// first, so re-submitting the same order adds nothing twice.
func (uc *inventoryUseCase) AddStockFromPurchaseOrder(ctx context.Context, restaurantID, purchaseOrderID string) (*dto.ReceiveResult, error) {
	po, err := uc.repo.GetPurchaseOrder(ctx, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	if po == nil || po.RestaurantID != restaurantID {
		return nil, model.ErrPurchaseOrderNotFound
	}
	if po.ProcessedAt != nil {
		return nil, model.ErrPurchaseOrderProcessed
	}

	ok, err := uc.repo.MarkPurchaseOrderProcessed(ctx, po.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against a concurrent receive of the same order.
		return nil, model.ErrPurchaseOrderProcessed
	}

	result := &dto.ReceiveResult{
		PurchaseOrderID: po.ID,
		TotalItems:      len(po.Items),
		Results:         make([]dto.ReceiveItemResult, 0, len(po.Items)),
	}

	for i := range po.Items {
		itemResult := uc.receiveItem(ctx, po, &po.Items[i])
		if itemResult.Status == dto.ReceiveItemProcessed {
			result.ItemsProcessed++
		}
		result.Results = append(result.Results, itemResult)
	}

	uc.logger.Info("purchase order received",
		zap.String("purchase_order_id", po.ID),
		zap.Int("items_processed", result.ItemsProcessed),
		zap.Int("total_items", result.TotalItems),
	)

	return result, nil
}

// itemFailed marks an item failed. The order is already stamped processed by
// then, so the reason names the recovery path: a manual package adjustment
// referencing the order.
func itemFailed(result dto.ReceiveItemResult, err error) dto.ReceiveItemResult {
	result.Status = dto.ReceiveItemFailed
	result.Reason = err.Error() + "; stock not added, re-add via a manual package adjustment referencing this order"
	return result
}

func (uc *inventoryUseCase) receiveItem(ctx context.Context, po *model.PurchaseOrder, item *model.PurchaseOrderItem) dto.ReceiveItemResult {
	result := dto.ReceiveItemResult{ItemID: item.ID}

	if item.IngredientID == nil || *item.IngredientID == "" {
		result.Status = dto.ReceiveItemSkipped
		result.Reason = "item has no ingredient"
		return result
	}
	result.IngredientID = *item.IngredientID

	if item.ReceivedQuantity <= 0 {
		result.Status = dto.ReceiveItemSkipped
		result.Reason = "nothing received"
		return result
	}

	ing, err := uc.repo.GetIngredient(ctx, *item.IngredientID)
	if err != nil {
		return itemFailed(result, err)
	}
	if ing == nil {
		return itemFailed(result, model.ErrIngredientNotFound)
	}

	contentsPerPackage, err := uc.resolvePackageContents(ctx, ing, po.SupplierID)
	if err != nil {
		result = itemFailed(result, err)
		uc.logger.Warn("purchase order item failed",
			zap.String("purchase_order_id", po.ID),
			zap.String("ingredient_id", ing.ID),
			zap.Error(err),
		)
		return result
	}

	stockDelta := float64(item.ReceivedQuantity) * contentsPerPackage
	movement := buildMovement(
		model.StockActionIncreased, stockDelta,
		"purchase_order", po.ID,
		fmt.Sprintf("received %d packages (order %s)", item.ReceivedQuantity, po.OrderNumber),
		"", time.Now(),
	)

	var updated *model.Ingredient
	err = uc.withIngredientLock(ctx, po.RestaurantID, ing.ID, func() error {
		var err error
		updated, err = uc.repo.ApplyStockChange(ctx, &dto.StockChange{
			IngredientID: ing.ID,
			StockDelta:   stockDelta,
			PackageDelta: item.ReceivedQuantity,
		}, movement)
		return err
	})
	if err != nil {
		return itemFailed(result, err)
	}

	uc.afterMutation(ctx, updated, movement)

	result.Status = dto.ReceiveItemProcessed
	result.PackagesAdded = item.ReceivedQuantity
	result.QuantityAdded = stockDelta
	result.StockBefore = movement.QuantityBefore
	result.StockAfter = movement.QuantityAfter
	result.PackagesBefore = movement.PackagesBefore
	result.PackagesAfter = movement.PackagesAfter
	return result
}

// resolvePackageContents finds how many base units one package of the
// ingredient holds per the supplier's active offer.
func (uc *inventoryUseCase) resolvePackageContents(ctx context.Context, ing *model.Ingredient, supplierID string) (float64, error) {
	offer, err := uc.repo.GetSupplierOffer(ctx, ing.ID, supplierID)
	if err != nil {
		return 0, err
	}
	if offer == nil || offer.PackageContentsQuantity <= 0 {
		return 0, &model.MissingPackageQuantityError{IngredientID: ing.ID, SupplierID: supplierID}
	}

	contents, err := unit.Convert(offer.PackageContentsQuantity, offer.PackageContentsUnit, ing.BaseUnit)
	if err != nil {
		return 0, err
	}
	return contents, nil
}
