package billing

import (
	"context"

	"github.com/kusinaops/inventory-service/internal/billing/dto"
	"github.com/kusinaops/inventory-service/internal/model"
)

type UseCase interface {
	// GenerateBillFromPurchaseOrder bills the received (not ordered)
	// quantities of a processed purchase order. At most one bill per order.
	GenerateBillFromPurchaseOrder(ctx context.Context, purchaseOrderID string, input *dto.GenerateBillInput) (*model.SupplierBill, error)

	RecordPayment(ctx context.Context, billID string, input *dto.RecordPaymentInput) (*dto.PaymentResult, error)
	CancelBill(ctx context.Context, restaurantID, billID string) (*model.SupplierBill, error)

	GetBill(ctx context.Context, restaurantID, billID string) (*model.SupplierBill, error)
	ListBills(ctx context.Context, filters *dto.BillFilters) ([]model.SupplierBill, int, error)
	ListPayments(ctx context.Context, restaurantID, billID string) ([]model.SupplierPayment, error)

	MarkOverdueBills(ctx context.Context) (int, error)
	ReconcileOverpaidBills(ctx context.Context) (int, error)
}
