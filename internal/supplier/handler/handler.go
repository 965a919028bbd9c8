package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kusinaops/inventory-service/internal/api"
	"github.com/kusinaops/inventory-service/internal/auth"
	"github.com/kusinaops/inventory-service/internal/supplier"
	"github.com/kusinaops/inventory-service/internal/supplier/dto"
	"github.com/kusinaops/inventory-service/pkg/logger"
)

type SupplierHandler struct {
	uc     supplier.UseCase
	logger logger.ZapLogger
}

func NewSupplierHandler(uc supplier.UseCase, log logger.ZapLogger) *SupplierHandler {
	return &SupplierHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *SupplierHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/suppliers", h.CreateSupplier)
	rg.PUT("/suppliers/:id", h.UpdateSupplier)
	rg.GET("/suppliers/:id", h.GetSupplier)
	rg.GET("/suppliers", h.ListSuppliers)

	rg.PUT("/ingredients/:id/offers", h.UpsertOffer)
	rg.GET("/ingredients/:id/offers", h.ListOffers)
}

type supplierRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	PaymentTerms  string `json:"payment_terms"`
	IsActive      bool   `json:"is_active"`
}

func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.uc.CreateSupplier(c.Request.Context(), &dto.CreateSupplierInput{
		RestaurantID:  auth.GetRestaurantID(c),
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentTerms:  req.PaymentTerms,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.uc.UpdateSupplier(c.Request.Context(), &dto.UpdateSupplierInput{
		ID:            c.Param("id"),
		RestaurantID:  auth.GetRestaurantID(c),
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentTerms:  req.PaymentTerms,
		IsActive:      req.IsActive,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	s, err := h.uc.GetSupplier(c.Request.Context(), auth.GetRestaurantID(c), c.Param("id"))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	items, total, err := h.uc.ListSuppliers(c.Request.Context(), &dto.SupplierFilters{
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

type upsertOfferRequest struct {
	SupplierID              string          `json:"supplier_id" binding:"required"`
	PackageUnit             string          `json:"package_unit" binding:"required"`
	PackageQuantity         float64         `json:"package_quantity"`
	PackageContentsQuantity float64         `json:"package_contents_quantity" binding:"required"`
	PackageContentsUnit     string          `json:"package_contents_unit" binding:"required"`
	PackagePrice            decimal.Decimal `json:"package_price"`
	MinimumOrderQuantity    float64         `json:"minimum_order_quantity"`
	IsActive                bool            `json:"is_active"`
}

func (h *SupplierHandler) UpsertOffer(c *gin.Context) {
	var req upsertOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offer, err := h.uc.UpsertOffer(c.Request.Context(), &dto.UpsertOfferInput{
		RestaurantID:            auth.GetRestaurantID(c),
		IngredientID:            c.Param("id"),
		SupplierID:              req.SupplierID,
		PackageUnit:             req.PackageUnit,
		PackageQuantity:         req.PackageQuantity,
		PackageContentsQuantity: req.PackageContentsQuantity,
		PackageContentsUnit:     req.PackageContentsUnit,
		PackagePrice:            req.PackagePrice,
		MinimumOrderQuantity:    req.MinimumOrderQuantity,
		IsActive:                req.IsActive,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *SupplierHandler) ListOffers(c *gin.Context) {
	offers, err := h.uc.ListOffers(c.Request.Context(), auth.GetRestaurantID(c), c.Param("id"))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": offers, "total": len(offers)})
}
