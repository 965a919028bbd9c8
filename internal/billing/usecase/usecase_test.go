package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kusinaops/inventory-service/internal/billing"
	"github.com/kusinaops/inventory-service/internal/billing/dto"
	"github.com/kusinaops/inventory-service/internal/model"
	"github.com/kusinaops/inventory-service/pkg/logger"
)

type fakeRepository struct {
	mu        sync.Mutex
	bills     map[string]*model.SupplierBill
	payments  map[string][]model.SupplierPayment
	orders    map[string]*model.PurchaseOrder
	suppliers map[string]*model.Supplier
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		bills:     map[string]*model.SupplierBill{},
		payments:  map[string][]model.SupplierPayment{},
		orders:    map[string]*model.PurchaseOrder{},
		suppliers: map[string]*model.Supplier{},
	}
}

func (r *fakeRepository) GetBill(_ context.Context, id string) (*model.SupplierBill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bill, ok := r.bills[id]
	if !ok {
		return nil, nil
	}
	copied := *bill
	return &copied, nil
}

func (r *fakeRepository) GetBillByPurchaseOrder(_ context.Context, purchaseOrderID string) (*model.SupplierBill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bill := range r.bills {
		if bill.PurchaseOrderID == purchaseOrderID {
			copied := *bill
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRepository) CreateBill(_ context.Context, bill *model.SupplierBill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *bill
	r.bills[bill.ID] = &copied
	return nil
}

func (r *fakeRepository) ListBills(_ context.Context, _ *dto.BillFilters) ([]model.SupplierBill, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.SupplierBill, 0, len(r.bills))
	for _, bill := range r.bills {
		out = append(out, *bill)
	}
	return out, len(out), nil
}

func (r *fakeRepository) ListPayments(_ context.Context, billID string) ([]model.SupplierPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.SupplierPayment(nil), r.payments[billID]...), nil
}

func (r *fakeRepository) RecordPayment(_ context.Context, payment *model.SupplierPayment, now time.Time) (*model.SupplierBill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bill, ok := r.bills[payment.BillID]
	if !ok {
		return nil, model.ErrBillNotFound
	}
	if err := bill.ApplyPayment(payment.PaymentAmount, now); err != nil {
		return nil, err
	}
	payment.RestaurantID = bill.RestaurantID
	r.payments[payment.BillID] = append(r.payments[payment.BillID], *payment)
	copied := *bill
	return &copied, nil
}

func (r *fakeRepository) CancelBill(_ context.Context, id string, now time.Time) (*model.SupplierBill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bill, ok := r.bills[id]
	if !ok {
		return nil, model.ErrBillNotFound
	}
	if bill.Status == model.BillStatusPaid {
		return nil, &model.BillNotPayableError{BillID: id, Status: bill.Status}
	}
	bill.Status = model.BillStatusCancelled
	bill.UpdatedAt = now
	copied := *bill
	return &copied, nil
}

func (r *fakeRepository) MarkOverdue(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, bill := range r.bills {
		if (bill.Status == model.BillStatusPending || bill.Status == model.BillStatusPartiallyPaid) &&
			bill.DueDate.Before(now) {
			bill.Status = model.BillStatusOverdue
			n++
		}
	}
	return n, nil
}

func (r *fakeRepository) ReconcileOverpaid(_ context.Context, _ time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, bill := range r.bills {
		if bill.PaidAmount.GreaterThan(bill.TotalAmount) {
			bill.PaidAmount = bill.TotalAmount
			bill.OutstandingAmount = decimal.Zero
			n++
		}
	}
	return n, nil
}

func (r *fakeRepository) GetPurchaseOrder(_ context.Context, id string) (*model.PurchaseOrder, error) {
	po, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *po
	return &copied, nil
}

func (r *fakeRepository) GetSupplier(_ context.Context, id string) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

// fakeLocker mirrors the SetNX semantics of the redis locker: a held key
// cannot be taken again until its holder releases it.
type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]string{}}
}

func (l *fakeLocker) AcquireLock(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[key]; taken {
		return false, nil
	}
	l.held[key] = value
	return true, nil
}

func (l *fakeLocker) ReleaseLock(_ context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == value {
		delete(l.held, key)
	}
	return nil
}

func testLogger() logger.ZapLogger {
	return logger.NewZapLogger(&logger.ZapLoggerConfig{
		Encoding:          "console",
		Level:             "fatal",
		DisableCaller:     true,
		DisableStacktrace: true,
	})
}

func newTestUseCase(repo *fakeRepository) billing.UseCase {
	return NewBillingUseCase(repo, newFakeLocker(), testLogger())
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func seedProcessedOrder(repo *fakeRepository, id string) *model.PurchaseOrder {
	processedAt := time.Now().Add(-time.Hour)
	po := &model.PurchaseOrder{
		BaseModel:    model.BaseModel{ID: id},
		RestaurantID: "rest-1",
		SupplierID:   "sup-1",
		OrderNumber:  "PO-0042",
		Status:       model.PurchaseOrderStatusReceived,
		OrderDate:    time.Now().Add(-48 * time.Hour),
		ProcessedAt:  &processedAt,
		Items: []model.PurchaseOrderItem{
			{
				BaseModel:        model.BaseModel{ID: "item-1"},
				PurchaseOrderID:  id,
				IngredientID:     strPtr("rice"),
				OrderedQuantity:  10,
				ReceivedQuantity: 8,
				UnitPrice:        d("1000"),
			},
			{
				BaseModel:        model.BaseModel{ID: "item-2"},
				PurchaseOrderID:  id,
				IngredientID:     strPtr("oil"),
				OrderedQuantity:  5,
				ReceivedQuantity: 0, // undelivered, must not be billed
				UnitPrice:        d("500"),
			},
			{
				BaseModel:        model.BaseModel{ID: "item-3"},
				PurchaseOrderID:  id,
				IngredientID:     strPtr("vinegar"),
				OrderedQuantity:  2,
				ReceivedQuantity: 2,
				UnitPrice:        d("250"),
			},
		},
	}
	repo.orders[id] = po
	return po
}

func TestGenerateBill_BillsReceivedQuantitiesOnly(t *testing.T) {
	repo := newFakeRepository()
	seedProcessedOrder(repo, "po-1")
	repo.suppliers["sup-1"] = &model.Supplier{
		BaseModel:    model.BaseModel{ID: "sup-1"},
		RestaurantID: "rest-1",
		PaymentTerms: "NET_15",
	}
	uc := newTestUseCase(repo)

	billDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	bill, err := uc.GenerateBillFromPurchaseOrder(context.Background(), "po-1", &dto.GenerateBillInput{
		RestaurantID:   "rest-1",
		TaxRate:        d("12"),
		DiscountAmount: d("500"),
		BillDate:       &billDate,
	})
	require.NoError(t, err)

	// subtotal = 8*1000 + 2*250 = 8500; taxable = 8000; tax = 960
	assert.True(t, bill.Subtotal.Equal(d("8500")), "subtotal %s", bill.Subtotal)
	assert.True(t, bill.TaxAmount.Equal(d("960")), "tax %s", bill.TaxAmount)
	assert.True(t, bill.TotalAmount.Equal(d("8960")), "total %s", bill.TotalAmount)
	assert.True(t, bill.OutstandingAmount.Equal(d("8960")))
	assert.True(t, bill.PaidAmount.IsZero())
	assert.Equal(t, model.BillStatusPending, bill.Status)
	assert.Equal(t, "BILL-PO-0042", bill.BillNumber)

	// Terms came from the supplier (NET_15).
	assert.Equal(t, billDate.AddDate(0, 0, 15), bill.DueDate)
}

func TestGenerateBill_ExplicitTermsWin(t *testing.T) {
	repo := newFakeRepository()
	seedProcessedOrder(repo, "po-1")
	uc := newTestUseCase(repo)

	billDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	bill, err := uc.GenerateBillFromPurchaseOrder(context.Background(), "po-1", &dto.GenerateBillInput{
		RestaurantID: "rest-1",
		PaymentTerms: "COD",
		BillDate:     &billDate,
	})
	require.NoError(t, err)
	assert.Equal(t, billDate, bill.DueDate)
}

func TestGenerateBill_Rejections(t *testing.T) {
	repo := newFakeRepository()
	po := seedProcessedOrder(repo, "po-1")
	uc := newTestUseCase(repo)
	ctx := context.Background()

	t.Run("wrong tenant", func(t *testing.T) {
		_, err := uc.GenerateBillFromPurchaseOrder(ctx, "po-1", &dto.GenerateBillInput{RestaurantID: "other"})
		require.ErrorIs(t, err, model.ErrPurchaseOrderNotFound)
	})

	t.Run("not yet received", func(t *testing.T) {
		po.ProcessedAt = nil
		defer func() {
			at := time.Now()
			po.ProcessedAt = &at
		}()
		_, err := uc.GenerateBillFromPurchaseOrder(ctx, "po-1", &dto.GenerateBillInput{RestaurantID: "rest-1"})
		require.Error(t, err)
	})

	t.Run("negative discount", func(t *testing.T) {
		_, err := uc.GenerateBillFromPurchaseOrder(ctx, "po-1", &dto.GenerateBillInput{
			RestaurantID:   "rest-1",
			DiscountAmount: d("-1"),
		})
		require.Error(t, err)
	})

	t.Run("discount above subtotal", func(t *testing.T) {
		_, err := uc.GenerateBillFromPurchaseOrder(ctx, "po-1", &dto.GenerateBillInput{
			RestaurantID:   "rest-1",
			DiscountAmount: d("99999"),
		})
		require.Error(t, err)
	})

	t.Run("duplicate bill", func(t *testing.T) {
		_, err := uc.GenerateBillFromPurchaseOrder(ctx, "po-1", &dto.GenerateBillInput{RestaurantID: "rest-1"})
		require.NoError(t, err)
		_, err = uc.GenerateBillFromPurchaseOrder(ctx, "po-1", &dto.GenerateBillInput{RestaurantID: "rest-1"})
		require.ErrorIs(t, err, model.ErrBillAlreadyExists)
	})
}

// slowCreateRepository widens the window between the existence check and the
// insert so two generates for the same order genuinely overlap.
type slowCreateRepository struct {
	*fakeRepository
	delay time.Duration
}

func (r *slowCreateRepository) CreateBill(ctx context.Context, bill *model.SupplierBill) error {
	time.Sleep(r.delay)
	return r.fakeRepository.CreateBill(ctx, bill)
}

func TestGenerateBill_ConcurrentGeneratesCreateOneBill(t *testing.T) {
	base := newFakeRepository()
	seedProcessedOrder(base, "po-1")
	repo := &slowCreateRepository{fakeRepository: base, delay: 30 * time.Millisecond}
	uc := NewBillingUseCase(repo, newFakeLocker(), testLogger())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.GenerateBillFromPurchaseOrder(context.Background(), "po-1", &dto.GenerateBillInput{
				RestaurantID: "rest-1",
			})
		}(i)
	}
	wg.Wait()

	require.Len(t, base.bills, 1, "exactly one bill per purchase order")

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, model.ErrBillAlreadyExists) || errors.Is(err, model.ErrLockNotAcquired):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
}

func TestGenerateBill_NothingReceivedRejected(t *testing.T) {
	repo := newFakeRepository()
	po := seedProcessedOrder(repo, "po-1")
	for i := range po.Items {
		po.Items[i].ReceivedQuantity = 0
	}
	uc := newTestUseCase(repo)

	_, err := uc.GenerateBillFromPurchaseOrder(context.Background(), "po-1", &dto.GenerateBillInput{
		RestaurantID: "rest-1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no received quantities")
	assert.Empty(t, repo.bills)
}

func TestGenerateBill_FullDiscountSettlesImmediately(t *testing.T) {
	repo := newFakeRepository()
	seedProcessedOrder(repo, "po-1")
	uc := newTestUseCase(repo)

	bill, err := uc.GenerateBillFromPurchaseOrder(context.Background(), "po-1", &dto.GenerateBillInput{
		RestaurantID:   "rest-1",
		DiscountAmount: d("8500"),
	})
	require.NoError(t, err)
	assert.True(t, bill.TotalAmount.IsZero())
	assert.True(t, bill.OutstandingAmount.IsZero())
	assert.Equal(t, model.BillStatusPaid, bill.Status)
}

func seedBill(repo *fakeRepository, id, total string) *model.SupplierBill {
	now := time.Now()
	bill := &model.SupplierBill{
		BaseModel:         model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		RestaurantID:      "rest-1",
		SupplierID:        "sup-1",
		PurchaseOrderID:   "po-" + id,
		BillNumber:        "BILL-" + id,
		BillDate:          now,
		DueDate:           now.AddDate(0, 0, 30),
		TotalAmount:       d(total),
		PaidAmount:        decimal.Zero,
		OutstandingAmount: d(total),
		Status:            model.BillStatusPending,
	}
	repo.bills[id] = bill
	return bill
}

func TestRecordPayment_Sequence(t *testing.T) {
	repo := newFakeRepository()
	seedBill(repo, "bill-1", "9520.00")
	uc := newTestUseCase(repo)
	ctx := context.Background()

	result, err := uc.RecordPayment(ctx, "bill-1", &dto.RecordPaymentInput{
		RestaurantID: "rest-1",
		Amount:       d("5000"),
		Method:       "bank_transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, model.BillStatusPartiallyPaid, result.Bill.Status)
	assert.True(t, result.Bill.OutstandingAmount.Equal(d("4520")))
	assert.Equal(t, model.PaymentStatusCompleted, result.Payment.Status)
	assert.Equal(t, "rest-1", result.Payment.RestaurantID)

	result, err = uc.RecordPayment(ctx, "bill-1", &dto.RecordPaymentInput{
		RestaurantID: "rest-1",
		Amount:       d("4520"),
		Method:       "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, model.BillStatusPaid, result.Bill.Status)
	assert.True(t, result.Bill.OutstandingAmount.IsZero())

	payments, err := uc.ListPayments(ctx, "rest-1", "bill-1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.PaymentAmount)
	}
	assert.True(t, sum.Equal(result.Bill.PaidAmount))
}

func TestRecordPayment_OverpaymentRejected(t *testing.T) {
	repo := newFakeRepository()
	seedBill(repo, "bill-1", "9520.00")
	uc := newTestUseCase(repo)
	ctx := context.Background()

	_, err := uc.RecordPayment(ctx, "bill-1", &dto.RecordPaymentInput{
		RestaurantID: "rest-1", Amount: d("5000"),
	})
	require.NoError(t, err)

	_, err = uc.RecordPayment(ctx, "bill-1", &dto.RecordPaymentInput{
		RestaurantID: "rest-1", Amount: d("6000"),
	})
	var overpayment *model.OverpaymentError
	require.ErrorAs(t, err, &overpayment)

	// Bill state and payment history unchanged by the rejection.
	bill := repo.bills["bill-1"]
	assert.True(t, bill.PaidAmount.Equal(d("5000")))
	assert.True(t, bill.OutstandingAmount.Equal(d("4520")))
	assert.Len(t, repo.payments["bill-1"], 1)
}

func TestRecordPayment_Validation(t *testing.T) {
	repo := newFakeRepository()
	seedBill(repo, "bill-1", "100.00")
	uc := newTestUseCase(repo)
	ctx := context.Background()

	var invalid *model.InvalidPaymentAmountError
	_, err := uc.RecordPayment(ctx, "bill-1", &dto.RecordPaymentInput{RestaurantID: "rest-1", Amount: decimal.Zero})
	require.ErrorAs(t, err, &invalid)

	_, err = uc.RecordPayment(ctx, "bill-1", &dto.RecordPaymentInput{RestaurantID: "other", Amount: d("10")})
	require.ErrorIs(t, err, model.ErrBillNotFound)

	_, err = uc.RecordPayment(ctx, "missing", &dto.RecordPaymentInput{RestaurantID: "rest-1", Amount: d("10")})
	require.ErrorIs(t, err, model.ErrBillNotFound)
}

func TestCancelBill(t *testing.T) {
	repo := newFakeRepository()
	seedBill(repo, "bill-1", "100.00")
	uc := newTestUseCase(repo)
	ctx := context.Background()

	cancelled, err := uc.CancelBill(ctx, "rest-1", "bill-1")
	require.NoError(t, err)
	assert.Equal(t, model.BillStatusCancelled, cancelled.Status)

	// Cancelled bills take no further payments.
	_, err = uc.RecordPayment(ctx, "bill-1", &dto.RecordPaymentInput{RestaurantID: "rest-1", Amount: d("10")})
	var notPayable *model.BillNotPayableError
	require.ErrorAs(t, err, &notPayable)
}

func TestMarkOverdueBills(t *testing.T) {
	repo := newFakeRepository()
	late := seedBill(repo, "bill-late", "100.00")
	late.DueDate = time.Now().AddDate(0, 0, -3)
	seedBill(repo, "bill-current", "100.00")
	uc := newTestUseCase(repo)

	n, err := uc.MarkOverdueBills(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.BillStatusOverdue, repo.bills["bill-late"].Status)
	assert.Equal(t, model.BillStatusPending, repo.bills["bill-current"].Status)
}

func TestReconcileOverpaidBills(t *testing.T) {
	repo := newFakeRepository()
	drifted := seedBill(repo, "bill-1", "100.00")
	drifted.PaidAmount = d("120")
	drifted.OutstandingAmount = d("-20")
	uc := newTestUseCase(repo)

	n, err := uc.ReconcileOverpaidBills(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, repo.bills["bill-1"].PaidAmount.Equal(d("100")))
	assert.True(t, repo.bills["bill-1"].OutstandingAmount.IsZero())
}
