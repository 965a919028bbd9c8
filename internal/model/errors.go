package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrIngredientNotFound       = errors.New("ingredient not found")
	ErrDishNotFound             = errors.New("dish not found")
	ErrSupplierNotFound         = errors.New("supplier not found")
	ErrPurchaseOrderNotFound    = errors.New("purchase order not found")
	ErrBillNotFound             = errors.New("supplier bill not found")
	ErrPurchaseOrderProcessed   = errors.New("purchase order already processed")
	ErrBillAlreadyExists        = errors.New("purchase order already has a bill")
	ErrInsufficientStockForSale = errors.New("insufficient stock for dish sale")
	ErrLockNotAcquired          = errors.New("system busy, please try again later (lock)")
)

type UnknownUnitError struct {
	Unit string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown unit %q", e.Unit)
}

type IncompatibleUnitsError struct {
	From string
	To   string
}

func (e *IncompatibleUnitsError) Error() string {
	return fmt.Sprintf("cannot convert between incompatible units %q and %q", e.From, e.To)
}

type InsufficientStockError struct {
	IngredientID string
	Requested    float64
	Available    float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for ingredient %s: requested %.4f, available %.4f",
		e.IngredientID, e.Requested, e.Available)
}

type InsufficientPackagesError struct {
	IngredientID string
	Requested    int
	Available    int
}

func (e *InsufficientPackagesError) Error() string {
	return fmt.Sprintf("insufficient packages for ingredient %s: requested %d, available %d",
		e.IngredientID, e.Requested, e.Available)
}

type MissingPackageQuantityError struct {
	IngredientID string
	SupplierID   string
}

func (e *MissingPackageQuantityError) Error() string {
	return fmt.Sprintf("no supplier offer defines package contents for ingredient %s (supplier %s)",
		e.IngredientID, e.SupplierID)
}

type OverpaymentError struct {
	BillID      string
	Amount      decimal.Decimal
	Outstanding decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment %s exceeds outstanding amount %s on bill %s",
		e.Amount.StringFixed(2), e.Outstanding.StringFixed(2), e.BillID)
}

type InvalidPaymentAmountError struct {
	Amount decimal.Decimal
}

func (e *InvalidPaymentAmountError) Error() string {
	return fmt.Sprintf("payment amount must be positive, got %s", e.Amount.StringFixed(2))
}

type BillNotPayableError struct {
	BillID string
	Status string
}

func (e *BillNotPayableError) Error() string {
	return fmt.Sprintf("bill %s cannot receive payments (status %s)", e.BillID, e.Status)
}
