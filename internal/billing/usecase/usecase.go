package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kusinaops/inventory-service/internal/billing"
	"github.com/kusinaops/inventory-service/internal/billing/dto"
	"github.com/kusinaops/inventory-service/internal/model"
	"github.com/kusinaops/inventory-service/pkg/cache"
	"github.com/kusinaops/inventory-service/pkg/logger"
)

type billingUseCase struct {
	repo   billing.Repository
	cache  cache.Locker
	logger logger.ZapLogger
}

func NewBillingUseCase(repo billing.Repository, locker cache.Locker, log logger.ZapLogger) billing.UseCase {
	return &billingUseCase{
		repo:   repo,
		cache:  locker,
		logger: log,
	}
}

// withLock serializes a critical section across service instances via a redis
// advisory lock. The database locks still guard correctness; this keeps
// contention out of the transactions.
func (uc *billingUseCase) withLock(ctx context.Context, key string, fn func() error) error {
	lockValue := uuid.New().String()
	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, key, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond) // wait before retry
	}
	if !acquired {
		return model.ErrLockNotAcquired
	}
	defer uc.cache.ReleaseLock(ctx, key, lockValue)

	return fn()
}

func (uc *billingUseCase) GenerateBillFromPurchaseOrder(ctx context.Context, purchaseOrderID string, input *dto.GenerateBillInput) (*model.SupplierBill, error) {
	po, err := uc.repo.GetPurchaseOrder(ctx, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	if po == nil || po.RestaurantID != input.RestaurantID {
		return nil, model.ErrPurchaseOrderNotFound
	}
	if po.ProcessedAt == nil {
		return nil, errors.New("purchase order has not been received yet")
	}

	// Bill received quantities only: undelivered goods are never billed.
	subtotal := decimal.Zero
	for _, item := range po.Items {
		if item.ReceivedQuantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.ReceivedQuantity))))
	}
	if subtotal.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("purchase order has no received quantities to bill")
	}

	discount := input.DiscountAmount
	if discount.IsNegative() {
		return nil, errors.New("discount amount cannot be negative")
	}
	if discount.GreaterThan(subtotal) {
		return nil, errors.New("discount amount cannot exceed subtotal")
	}

	tax := subtotal.Sub(discount).Mul(input.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.Sub(discount).Add(tax)

	terms := input.PaymentTerms
	if terms == "" {
		supplier, err := uc.repo.GetSupplier(ctx, po.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier != nil {
			terms = supplier.PaymentTerms
		}
	}

	now := time.Now()
	billDate := now
	if input.BillDate != nil {
		billDate = *input.BillDate
	}

	bill := &model.SupplierBill{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		RestaurantID:      po.RestaurantID,
		SupplierID:        po.SupplierID,
		PurchaseOrderID:   po.ID,
		BillNumber:        fmt.Sprintf("BILL-%s", po.OrderNumber),
		BillDate:          billDate,
		DueDate:           billDate.AddDate(0, 0, model.TermDays(terms)),
		Subtotal:          subtotal,
		TaxAmount:         tax,
		DiscountAmount:    discount,
		TotalAmount:       total,
		PaidAmount:        decimal.Zero,
		OutstandingAmount: total,
		Notes:             input.Notes,
	}
	// Status follows the amounts from the start: a bill settled at issue
	// (total zero after discount) comes out paid, never a 0/0 pending row.
	// Lateness is the overdue sweep's job, so status is derived relative to
	// the bill date.
	bill.RecomputeStatus(billDate)

	// The existence check and the insert must not interleave with a concurrent
	// generate for the same order; the unique index on
	// supplier_bills.purchase_order_id is the backstop.
	err = uc.withLock(ctx, fmt.Sprintf("lock:bill-gen:%s", po.ID), func() error {
		existing, err := uc.repo.GetBillByPurchaseOrder(ctx, po.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return model.ErrBillAlreadyExists
		}
		return uc.repo.CreateBill(ctx, bill)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("supplier bill generated",
		zap.String("bill_id", bill.ID),
		zap.String("purchase_order_id", po.ID),
		zap.String("subtotal", subtotal.StringFixed(2)),
		zap.String("total_amount", total.StringFixed(2)),
		zap.Time("due_date", bill.DueDate),
	)

	return bill, nil
}

func (uc *billingUseCase) RecordPayment(ctx context.Context, billID string, input *dto.RecordPaymentInput) (*dto.PaymentResult, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, &model.InvalidPaymentAmountError{Amount: input.Amount}
	}

	// The row lock in the repository guards correctness; the advisory lock
	// keeps concurrent payments from burning transactions on lock waits.
	var (
		payment    *model.SupplierPayment
		updated    *model.SupplierBill
		paidBefore decimal.Decimal
	)
	err := uc.withLock(ctx, fmt.Sprintf("lock:bill:%s", billID), func() error {
		bill, err := uc.repo.GetBill(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil || bill.RestaurantID != input.RestaurantID {
			return model.ErrBillNotFound
		}

		now := time.Now()
		var refNumber *string
		if input.ReferenceNumber != "" {
			refNumber = &input.ReferenceNumber
		}

		payment = &model.SupplierPayment{
			BaseModel: model.BaseModel{
				ID:        uuid.New().String(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			BillID:          billID,
			RestaurantID:    input.RestaurantID,
			PaymentAmount:   input.Amount,
			PaymentMethod:   input.Method,
			PaymentDate:     now,
			ReferenceNumber: refNumber,
			Notes:           input.Notes,
			Status:          model.PaymentStatusCompleted,
		}

		paidBefore = bill.PaidAmount
		updated, err = uc.repo.RecordPayment(ctx, payment, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("payment recorded",
		zap.String("bill_id", billID),
		zap.String("payment_id", payment.ID),
		zap.String("amount", input.Amount.StringFixed(2)),
		zap.String("paid_before", paidBefore.StringFixed(2)),
		zap.String("paid_after", updated.PaidAmount.StringFixed(2)),
		zap.String("outstanding", updated.OutstandingAmount.StringFixed(2)),
		zap.String("status", updated.Status),
	)

	return &dto.PaymentResult{Payment: payment, Bill: updated}, nil
}

func (uc *billingUseCase) CancelBill(ctx context.Context, restaurantID, billID string) (*model.SupplierBill, error) {
	bill, err := uc.repo.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil || bill.RestaurantID != restaurantID {
		return nil, model.ErrBillNotFound
	}

	cancelled, err := uc.repo.CancelBill(ctx, billID, time.Now())
	if err != nil {
		return nil, err
	}

	uc.logger.Info("supplier bill cancelled",
		zap.String("bill_id", billID),
		zap.String("outstanding", cancelled.OutstandingAmount.StringFixed(2)),
	)
	return cancelled, nil
}

func (uc *billingUseCase) GetBill(ctx context.Context, restaurantID, billID string) (*model.SupplierBill, error) {
	bill, err := uc.repo.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil || bill.RestaurantID != restaurantID {
		return nil, model.ErrBillNotFound
	}
	return bill, nil
}

func (uc *billingUseCase) ListBills(ctx context.Context, filters *dto.BillFilters) ([]model.SupplierBill, int, error) {
	return uc.repo.ListBills(ctx, filters)
}

func (uc *billingUseCase) ListPayments(ctx context.Context, restaurantID, billID string) ([]model.SupplierPayment, error) {
	bill, err := uc.repo.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil || bill.RestaurantID != restaurantID {
		return nil, model.ErrBillNotFound
	}
	return uc.repo.ListPayments(ctx, billID)
}

func (uc *billingUseCase) MarkOverdueBills(ctx context.Context) (int, error) {
	n, err := uc.repo.MarkOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.logger.Info("bills marked overdue", zap.Int("count", n))
	}
	return n, nil
}

func (uc *billingUseCase) ReconcileOverpaidBills(ctx context.Context) (int, error) {
	n, err := uc.repo.ReconcileOverpaid(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.logger.Warn("overpaid bills reconciled", zap.Int("count", n))
	}
	return n, nil
}
