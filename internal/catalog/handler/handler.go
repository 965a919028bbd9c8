package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kusinaops/inventory-service/internal/api"
	"github.com/kusinaops/inventory-service/internal/auth"
	"github.com/kusinaops/inventory-service/internal/catalog"
	"github.com/kusinaops/inventory-service/internal/catalog/dto"
	"github.com/kusinaops/inventory-service/pkg/logger"
)

type CatalogHandler struct {
	uc     catalog.UseCase
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CatalogHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/ingredients", h.CreateIngredient)
	rg.PUT("/ingredients/:id", h.UpdateIngredient)
	rg.GET("/ingredients/:id", h.GetIngredient)
	rg.GET("/ingredients", h.ListIngredients)

	rg.POST("/dishes", h.CreateDish)
	rg.GET("/dishes/:id", h.GetDish)
	rg.GET("/dishes", h.ListDishes)
}

type createIngredientRequest struct {
	Name         string  `json:"name" binding:"required"`
	BaseUnit     string  `json:"base_unit" binding:"required"`
	ReorderLevel float64 `json:"reorder_level"`
}

func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	var req createIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ing, err := h.uc.CreateIngredient(c.Request.Context(), &dto.CreateIngredientInput{
		RestaurantID: auth.GetRestaurantID(c),
		Name:         req.Name,
		BaseUnit:     req.BaseUnit,
		ReorderLevel: req.ReorderLevel,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

type updateIngredientRequest struct {
	Name         string  `json:"name" binding:"required"`
	ReorderLevel float64 `json:"reorder_level"`
	IsActive     bool    `json:"is_active"`
}

func (h *CatalogHandler) UpdateIngredient(c *gin.Context) {
	var req updateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ing, err := h.uc.UpdateIngredient(c.Request.Context(), &dto.UpdateIngredientInput{
		ID:           c.Param("id"),
		RestaurantID: auth.GetRestaurantID(c),
		Name:         req.Name,
		ReorderLevel: req.ReorderLevel,
		IsActive:     req.IsActive,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	ing, err := h.uc.GetIngredient(c.Request.Context(), auth.GetRestaurantID(c), c.Param("id"))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	items, total, err := h.uc.ListIngredients(c.Request.Context(), &dto.IngredientFilters{
		RestaurantID: auth.GetRestaurantID(c),
		SearchQuery:  c.Query("q"),
		ActiveOnly:   c.Query("active_only") == "true",
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

type recipeLineRequest struct {
	IngredientID   string  `json:"ingredient_id" binding:"required"`
	QuantityNeeded float64 `json:"quantity_needed" binding:"required"`
	UnitOfMeasure  string  `json:"unit_of_measure" binding:"required"`
	IsOptional     bool    `json:"is_optional"`
}

type createDishRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Price       float64             `json:"price"`
	Recipe      []recipeLineRequest `json:"recipe"`
}

func (h *CatalogHandler) CreateDish(c *gin.Context) {
	var req createDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe := make([]dto.RecipeLineInput, 0, len(req.Recipe))
	for _, line := range req.Recipe {
		recipe = append(recipe, dto.RecipeLineInput{
			IngredientID:   line.IngredientID,
			QuantityNeeded: line.QuantityNeeded,
			UnitOfMeasure:  line.UnitOfMeasure,
			IsOptional:     line.IsOptional,
		})
	}

	dish, err := h.uc.CreateDish(c.Request.Context(), &dto.CreateDishInput{
		RestaurantID: auth.GetRestaurantID(c),
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Recipe:       recipe,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dish)
}

func (h *CatalogHandler) GetDish(c *gin.Context) {
	dish, err := h.uc.GetDish(c.Request.Context(), auth.GetRestaurantID(c), c.Param("id"))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

func (h *CatalogHandler) ListDishes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	items, total, err := h.uc.ListDishes(c.Request.Context(), &dto.DishFilters{
		RestaurantID: auth.GetRestaurantID(c),
		ActiveOnly:   c.Query("active_only") == "true",
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}
