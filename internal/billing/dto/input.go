package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type GenerateBillInput struct {
	RestaurantID   string
	TaxRate        decimal.Decimal // percent, e.g. 12 for 12% VAT
	DiscountAmount decimal.Decimal
	PaymentTerms   string // empty means use the supplier's terms
	BillDate       *time.Time
	Notes          string
}

type RecordPaymentInput struct {
	RestaurantID    string
	Amount          decimal.Decimal
	Method          string // 'cash', 'bank_transfer', 'check', ...
	ReferenceNumber string
	Notes           string
	UserID          string
}
