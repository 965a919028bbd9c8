package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kusinaops/inventory-service/internal/api"
	"github.com/kusinaops/inventory-service/internal/auth"
	"github.com/kusinaops/inventory-service/internal/billing"
	"github.com/kusinaops/inventory-service/internal/billing/dto"
	"github.com/kusinaops/inventory-service/pkg/logger"
)

type BillingHandler struct {
	uc             billing.UseCase
	defaultTaxRate decimal.Decimal
	logger         logger.ZapLogger
}

func NewBillingHandler(uc billing.UseCase, defaultTaxRate decimal.Decimal, log logger.ZapLogger) *BillingHandler {
	return &BillingHandler{
		uc:             uc,
		defaultTaxRate: defaultTaxRate,
		logger:         log,
	}
}

func (h *BillingHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/purchase-orders/:id/bill", h.GenerateBill)
	rg.POST("/bills/:id/payments", h.RecordPayment)
	rg.POST("/bills/:id/cancel", h.CancelBill)
	rg.GET("/bills/:id", h.GetBill)
	rg.GET("/bills", h.ListBills)
	rg.GET("/bills/:id/payments", h.ListPayments)
	rg.POST("/bills/mark-overdue", h.MarkOverdue)
}

type generateBillRequest struct {
	TaxRate        *decimal.Decimal `json:"tax_rate"` // omit to use the configured VAT rate
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	PaymentTerms   string           `json:"payment_terms"`
	BillDate       *time.Time       `json:"bill_date"`
	Notes          string           `json:"notes"`
}

func (h *BillingHandler) GenerateBill(c *gin.Context) {
	var req generateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	taxRate := h.defaultTaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	bill, err := h.uc.GenerateBillFromPurchaseOrder(c.Request.Context(), c.Param("id"), &dto.GenerateBillInput{
		RestaurantID:   auth.GetRestaurantID(c),
		TaxRate:        taxRate,
		DiscountAmount: req.DiscountAmount,
		PaymentTerms:   req.PaymentTerms,
		BillDate:       req.BillDate,
		Notes:          req.Notes,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

type recordPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Method          string          `json:"method"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

func (h *BillingHandler) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.uc.RecordPayment(c.Request.Context(), c.Param("id"), &dto.RecordPaymentInput{
		RestaurantID:    auth.GetRestaurantID(c),
		Amount:          req.Amount,
		Method:          req.Method,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		UserID:          c.GetHeader("X-User-ID"),
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BillingHandler) CancelBill(c *gin.Context) {
	bill, err := h.uc.CancelBill(c.Request.Context(), auth.GetRestaurantID(c), c.Param("id"))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (h *BillingHandler) GetBill(c *gin.Context) {
	bill, err := h.uc.GetBill(c.Request.Context(), auth.GetRestaurantID(c), c.Param("id"))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (h *BillingHandler) ListBills(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	items, total, err := h.uc.ListBills(c.Request.Context(), &dto.BillFilters{
		RestaurantID: auth.GetRestaurantID(c),
		SupplierID:   c.Query("supplier_id"),
		Status:       c.Query("status"),
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *BillingHandler) ListPayments(c *gin.Context) {
	payments, err := h.uc.ListPayments(c.Request.Context(), auth.GetRestaurantID(c), c.Param("id"))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": payments, "total": len(payments)})
}

func (h *BillingHandler) MarkOverdue(c *gin.Context) {
	count, err := h.uc.MarkOverdueBills(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": count})
}
