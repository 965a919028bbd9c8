package billing

import (
	"context"
	"time"

	"github.com/kusinaops/inventory-service/internal/billing/dto"
	"github.com/kusinaops/inventory-service/internal/model"
)

type Repository interface {
	GetBill(ctx context.Context, id string) (*model.SupplierBill, error)
	GetBillByPurchaseOrder(ctx context.Context, purchaseOrderID string) (*model.SupplierBill, error)
	CreateBill(ctx context.Context, bill *model.SupplierBill) error
	ListBills(ctx context.Context, filters *dto.BillFilters) ([]model.SupplierBill, int, error)
	ListPayments(ctx context.Context, billID string) ([]model.SupplierPayment, error)

	// RecordPayment locks the bill row, applies the payment through the
	// bill's state machine, and persists the payment and updated bill in one
	// transaction. The payment's restaurant id is taken from the bill.
	RecordPayment(ctx context.Context, payment *model.SupplierPayment, now time.Time) (*model.SupplierBill, error)
	CancelBill(ctx context.Context, id string, now time.Time) (*model.SupplierBill, error)

	// MarkOverdue flips pending/partially_paid bills past their due date to
	// overdue; returns how many rows changed.
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
	// ReconcileOverpaid caps paid_amount at total_amount for historical rows
	// written outside this service; returns how many rows changed.
	ReconcileOverpaid(ctx context.Context, now time.Time) (int, error)

	GetPurchaseOrder(ctx context.Context, id string) (*model.PurchaseOrder, error)
	GetSupplier(ctx context.Context, id string) (*model.Supplier, error)
}
