package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kusinaops/inventory-service/internal/model"
)

// RespondError maps domain errors to HTTP status codes. Controllers render
// the message as-is; the structured fields live on the error types.
func RespondError(c *gin.Context, err error) {
	var (
		unknownUnit     *model.UnknownUnitError
		incompatible    *model.IncompatibleUnitsError
		insufficient    *model.InsufficientStockError
		insufficientPkg *model.InsufficientPackagesError
		missingPkg      *model.MissingPackageQuantityError
		overpayment     *model.OverpaymentError
		invalidAmount   *model.InvalidPaymentAmountError
		notPayable      *model.BillNotPayableError
	)

	switch {
	case errors.Is(err, model.ErrIngredientNotFound),
		errors.Is(err, model.ErrDishNotFound),
		errors.Is(err, model.ErrSupplierNotFound),
		errors.Is(err, model.ErrPurchaseOrderNotFound),
		errors.Is(err, model.ErrBillNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrPurchaseOrderProcessed),
		errors.Is(err, model.ErrBillAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &unknownUnit),
		errors.As(err, &incompatible),
		errors.As(err, &insufficient),
		errors.As(err, &insufficientPkg),
		errors.As(err, &missingPkg),
		errors.As(err, &overpayment),
		errors.As(err, &invalidAmount),
		errors.As(err, &notPayable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrLockNotAcquired):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
