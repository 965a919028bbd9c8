package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kusinaops/inventory-service/internal/api"
	"github.com/kusinaops/inventory-service/internal/auth"
	"github.com/kusinaops/inventory-service/internal/inventory"
	"github.com/kusinaops/inventory-service/internal/inventory/dto"
	"github.com/kusinaops/inventory-service/pkg/logger"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/purchase-orders/:id/receive", h.ReceivePurchaseOrder)
	rg.POST("/dishes/:id/deduct", h.DeductDishSale)
	rg.POST("/dishes/:id/availability", h.CheckAvailability)
	rg.POST("/ingredients/:id/adjust", h.AdjustStock)
	rg.GET("/ingredients/low-stock", h.ListLowStock)
	rg.GET("/inventory/movements", h.ListMovements)
}

func (h *InventoryHandler) ReceivePurchaseOrder(c *gin.Context) {
	restaurantID := auth.GetRestaurantID(c)

	result, err := h.uc.AddStockFromPurchaseOrder(c.Request.Context(), restaurantID, c.Param("id"))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type dishSaleRequest struct {
	Quantity              int      `json:"quantity" binding:"required"`
	VariantMultiplier     float64  `json:"variant_multiplier"`
	ExcludedIngredientIDs []string `json:"excluded_ingredient_ids"`
	ReferenceID           string   `json:"reference_id"`
}

func (h *InventoryHandler) dishSaleInput(c *gin.Context) (*dto.DishSaleInput, error) {
	var req dishSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return &dto.DishSaleInput{
		RestaurantID:          auth.GetRestaurantID(c),
		DishID:                c.Param("id"),
		Quantity:              req.Quantity,
		VariantMultiplier:     req.VariantMultiplier,
		ExcludedIngredientIDs: req.ExcludedIngredientIDs,
		ReferenceID:           req.ReferenceID,
	}, nil
}

func (h *InventoryHandler) DeductDishSale(c *gin.Context) {
	input, err := h.dishSaleInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.uc.SubtractStockFromDishSale(c.Request.Context(), input)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *InventoryHandler) CheckAvailability(c *gin.Context) {
	input, err := h.dishSaleInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.uc.CheckStockAvailability(c.Request.Context(), input)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type adjustStockRequest struct {
	Action             string  `json:"action" binding:"required"` // 'increase', 'decrease', 'add_packages', 'remove_packages'
	Amount             float64 `json:"amount"`
	PackageCount       int     `json:"package_count"`
	ContentsPerPackage float64 `json:"contents_per_package"`
	Reason             string  `json:"reason"`
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	restaurantID := auth.GetRestaurantID(c)
	ingredientID := c.Param("id")
	ctx := c.Request.Context()

	stockInput := &dto.StockAdjustmentInput{
		RestaurantID:  restaurantID,
		IngredientID:  ingredientID,
		Amount:        req.Amount,
		Reason:        req.Reason,
		ReferenceType: "manual",
	}
	packageInput := &dto.PackageAdjustmentInput{
		RestaurantID:       restaurantID,
		IngredientID:       ingredientID,
		PackageCount:       req.PackageCount,
		ContentsPerPackage: req.ContentsPerPackage,
		Reason:             req.Reason,
		ReferenceType:      "manual",
	}

	var (
		ing interface{}
		err error
	)
	switch req.Action {
	case "increase":
		ing, err = h.uc.IncreaseStock(ctx, stockInput)
	case "decrease":
		ing, err = h.uc.DecreaseStock(ctx, stockInput)
	case "add_packages":
		ing, err = h.uc.AddPackages(ctx, packageInput)
	case "remove_packages":
		ing, err = h.uc.RemovePackages(ctx, packageInput)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
		return
	}
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	items, err := h.uc.GetLowStockIngredients(c.Request.Context(), auth.GetRestaurantID(c))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	items, total, err := h.uc.ListMovements(c.Request.Context(), &dto.MovementFilters{
		RestaurantID:  auth.GetRestaurantID(c),
		IngredientID:  c.Query("ingredient_id"),
		Action:        c.Query("action"),
		ReferenceType: c.Query("reference_type"),
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}
