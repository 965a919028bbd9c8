package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testBill(total string) *SupplierBill {
	now := time.Now()
	return &SupplierBill{
		BaseModel:         BaseModel{ID: "bill-1", CreatedAt: now, UpdatedAt: now},
		RestaurantID:      "rest-1",
		SupplierID:        "sup-1",
		PurchaseOrderID:   "po-1",
		BillNumber:        "BILL-PO-0042",
		BillDate:          now,
		DueDate:           now.AddDate(0, 0, 30),
		TotalAmount:       d(total),
		PaidAmount:        decimal.Zero,
		OutstandingAmount: d(total),
		Status:            BillStatusPending,
	}
}

func TestTermDays(t *testing.T) {
	assert.Equal(t, 0, TermDays("COD"))
	assert.Equal(t, 0, TermDays("NET_0"))
	assert.Equal(t, 7, TermDays("NET_7"))
	assert.Equal(t, 15, TermDays("NET_15"))
	assert.Equal(t, 30, TermDays("NET_30"))
	assert.Equal(t, 60, TermDays("NET_60"))
	assert.Equal(t, 90, TermDays("NET_90"))
	assert.Equal(t, 30, TermDays(""))
	assert.Equal(t, 30, TermDays("NET_45"))
}

func TestApplyPayment_PartialThenFull(t *testing.T) {
	bill := testBill("9520.00")
	now := time.Now()

	require.NoError(t, bill.ApplyPayment(d("5000"), now))
	assert.True(t, bill.PaidAmount.Equal(d("5000")))
	assert.True(t, bill.OutstandingAmount.Equal(d("4520")))
	assert.Equal(t, BillStatusPartiallyPaid, bill.Status)

	require.NoError(t, bill.ApplyPayment(d("4520"), now))
	assert.True(t, bill.PaidAmount.Equal(d("9520")))
	assert.True(t, bill.OutstandingAmount.IsZero())
	assert.Equal(t, BillStatusPaid, bill.Status)
}

func TestApplyPayment_OverpaymentRejectedUnchanged(t *testing.T) {
	bill := testBill("9520.00")
	now := time.Now()
	require.NoError(t, bill.ApplyPayment(d("5000"), now))

	err := bill.ApplyPayment(d("6000"), now)
	var overpayment *OverpaymentError
	require.ErrorAs(t, err, &overpayment)
	assert.True(t, overpayment.Outstanding.Equal(d("4520")))

	// The rejected payment left every amount and the status untouched.
	assert.True(t, bill.PaidAmount.Equal(d("5000")))
	assert.True(t, bill.OutstandingAmount.Equal(d("4520")))
	assert.Equal(t, BillStatusPartiallyPaid, bill.Status)
}

func TestApplyPayment_NonPositiveAmount(t *testing.T) {
	bill := testBill("100.00")

	var invalid *InvalidPaymentAmountError
	require.ErrorAs(t, bill.ApplyPayment(decimal.Zero, time.Now()), &invalid)
	require.ErrorAs(t, bill.ApplyPayment(d("-10"), time.Now()), &invalid)
	assert.Equal(t, BillStatusPending, bill.Status)
}

func TestApplyPayment_TerminalStatuses(t *testing.T) {
	now := time.Now()

	paid := testBill("100.00")
	require.NoError(t, paid.ApplyPayment(d("100"), now))
	var notPayable *BillNotPayableError
	require.ErrorAs(t, paid.ApplyPayment(d("1"), now), &notPayable)
	assert.Equal(t, BillStatusPaid, notPayable.Status)

	cancelled := testBill("100.00")
	cancelled.Status = BillStatusCancelled
	require.ErrorAs(t, cancelled.ApplyPayment(d("1"), now), &notPayable)
}

func TestApplyPayment_OverdueBillStillPayable(t *testing.T) {
	bill := testBill("100.00")
	bill.DueDate = time.Now().AddDate(0, 0, -5)
	bill.Status = BillStatusOverdue
	now := time.Now()

	require.NoError(t, bill.ApplyPayment(d("40"), now))
	// Still short and still past due, so it stays overdue.
	assert.Equal(t, BillStatusOverdue, bill.Status)

	require.NoError(t, bill.ApplyPayment(d("60"), now))
	assert.Equal(t, BillStatusPaid, bill.Status)
}

func TestRecomputeStatus(t *testing.T) {
	now := time.Now()

	bill := testBill("100.00")
	bill.RecomputeStatus(now)
	assert.Equal(t, BillStatusPending, bill.Status)

	bill.PaidAmount = d("25")
	bill.OutstandingAmount = d("75")
	bill.RecomputeStatus(now)
	assert.Equal(t, BillStatusPartiallyPaid, bill.Status)

	bill.DueDate = now.AddDate(0, 0, -1)
	bill.RecomputeStatus(now)
	assert.Equal(t, BillStatusOverdue, bill.Status)

	bill.PaidAmount = d("100")
	bill.OutstandingAmount = decimal.Zero
	bill.RecomputeStatus(now)
	assert.Equal(t, BillStatusPaid, bill.Status)

	bill.Status = BillStatusCancelled
	bill.RecomputeStatus(now)
	assert.Equal(t, BillStatusCancelled, bill.Status)
}

func TestCanReceivePayment(t *testing.T) {
	bill := testBill("100.00")
	assert.True(t, bill.CanReceivePayment())

	bill.Status = BillStatusOverdue
	assert.True(t, bill.CanReceivePayment())

	bill.Status = BillStatusCancelled
	assert.False(t, bill.CanReceivePayment())

	bill = testBill("100.00")
	bill.PaidAmount = d("100")
	bill.OutstandingAmount = decimal.Zero
	bill.Status = BillStatusPaid
	assert.False(t, bill.CanReceivePayment())
}
