package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	BillStatusPending       = "pending"
	BillStatusPartiallyPaid = "partially_paid"
	BillStatusPaid          = "paid"
	BillStatusOverdue       = "overdue"
	BillStatusCancelled     = "cancelled"
)

const (
	PaymentStatusCompleted = "completed"
	PaymentStatusCancelled = "cancelled"
)

// TermDays maps supplier payment terms to the number of days until the bill
// is due. Unrecognized terms fall back to NET_30.
func TermDays(terms string) int {
	switch terms {
	case "COD", "NET_0":
		return 0
	case "NET_7":
		return 7
	case "NET_15":
		return 15
	case "NET_60":
		return 60
	case "NET_90":
		return 90
	default: // NET_30 and anything unrecognized
		return 30
	}
}

// SupplierBill is created once per received purchase order (at most one bill
// per PO) and mutated only by payment recording. Invariants after any
// mutation: outstanding = max(0, total - paid) and paid <= total.
type SupplierBill struct {
	BaseModel
	RestaurantID      string          `db:"restaurant_id" json:"restaurant_id"`
	SupplierID        string          `db:"supplier_id" json:"supplier_id"`
	PurchaseOrderID   string          `db:"purchase_order_id" json:"purchase_order_id"`
	BillNumber        string          `db:"bill_number" json:"bill_number"`
	BillDate          time.Time       `db:"bill_date" json:"bill_date"`
	DueDate           time.Time       `db:"due_date" json:"due_date"`
	Subtotal          decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxAmount         decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	DiscountAmount    decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TotalAmount       decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaidAmount        decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	OutstandingAmount decimal.Decimal `db:"outstanding_amount" json:"outstanding_amount"`
	Status            string          `db:"status" json:"status"`
	Notes             string          `db:"notes" json:"notes"`
}

// SupplierPayment rows are immutable once created; the sum of non-cancelled
// payment amounts equals the bill's PaidAmount.
type SupplierPayment struct {
	BaseModel
	BillID          string          `db:"bill_id" json:"bill_id"`
	RestaurantID    string          `db:"restaurant_id" json:"restaurant_id"`
	PaymentAmount   decimal.Decimal `db:"payment_amount" json:"payment_amount"`
	PaymentMethod   string          `db:"payment_method" json:"payment_method"`
	PaymentDate     time.Time       `db:"payment_date" json:"payment_date"`
	ReferenceNumber *string         `db:"reference_number" json:"reference_number"`
	Notes           string          `db:"notes" json:"notes"`
	Status          string          `db:"status" json:"status"`
}

// CanReceivePayment reports whether the bill accepts further payments. Paid
// and cancelled are terminal.
func (b *SupplierBill) CanReceivePayment() bool {
	return b.Status != BillStatusCancelled && b.OutstandingAmount.GreaterThan(decimal.Zero)
}

// ApplyPayment validates and applies one payment. It mutates the bill only on
// success, so a rejected payment leaves it untouched.
func (b *SupplierBill) ApplyPayment(amount decimal.Decimal, now time.Time) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return &InvalidPaymentAmountError{Amount: amount}
	}
	if !b.CanReceivePayment() {
		return &BillNotPayableError{BillID: b.ID, Status: b.Status}
	}
	if amount.GreaterThan(b.OutstandingAmount) {
		return &OverpaymentError{BillID: b.ID, Amount: amount, Outstanding: b.OutstandingAmount}
	}

	b.PaidAmount = b.PaidAmount.Add(amount)
	b.OutstandingAmount = decimal.Max(decimal.Zero, b.TotalAmount.Sub(b.PaidAmount))
	if b.OutstandingAmount.IsZero() && b.PaidAmount.GreaterThan(b.TotalAmount) {
		// Guard against drift in amounts recorded by earlier writers.
		b.PaidAmount = b.TotalAmount
	}

	b.RecomputeStatus(now)
	b.UpdatedAt = now
	return nil
}

// RecomputeStatus derives status purely from the amounts and due date, so it
// stays consistent even after out-of-band corrections. Cancelled is sticky.
func (b *SupplierBill) RecomputeStatus(now time.Time) {
	if b.Status == BillStatusCancelled {
		return
	}
	switch {
	case b.OutstandingAmount.LessThanOrEqual(decimal.Zero):
		b.Status = BillStatusPaid
	case b.PaidAmount.GreaterThan(decimal.Zero):
		b.Status = BillStatusPartiallyPaid
	default:
		b.Status = BillStatusPending
	}
	if b.OutstandingAmount.GreaterThan(decimal.Zero) && b.DueDate.Before(now) {
		b.Status = BillStatusOverdue
	}
}
