package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/kusinaops/inventory-service/internal/billing/dto"
	"github.com/kusinaops/inventory-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetBill(ctx context.Context, id string) (*model.SupplierBill, error) {
	var bill model.SupplierBill
	err := r.DB.GetContext(ctx, &bill, `SELECT * FROM supplier_bills WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get bill")
	}
	return &bill, nil
}

func (r *PGRepository) GetBillByPurchaseOrder(ctx context.Context, purchaseOrderID string) (*model.SupplierBill, error) {
	var bill model.SupplierBill
	err := r.DB.GetContext(ctx, &bill,
		`SELECT * FROM supplier_bills WHERE purchase_order_id = $1`, purchaseOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get bill by purchase order")
	}
	return &bill, nil
}

const insertBillQuery = `
    INSERT INTO supplier_bills (
        id, restaurant_id, supplier_id, purchase_order_id, bill_number,
        bill_date, due_date, subtotal, tax_amount, discount_amount,
        total_amount, paid_amount, outstanding_amount, status, notes,
        created_at, updated_at
    )
    VALUES (
        :id, :restaurant_id, :supplier_id, :purchase_order_id, :bill_number,
        :bill_date, :due_date, :subtotal, :tax_amount, :discount_amount,
        :total_amount, :paid_amount, :outstanding_amount, :status, :notes,
        :created_at, :updated_at
    )
`

func (r *PGRepository) CreateBill(ctx context.Context, bill *model.SupplierBill) error {
	_, err := r.DB.NamedExecContext(ctx, insertBillQuery, bill)
	// The unique index on supplier_bills.purchase_order_id backstops the
	// advisory lock in the usecase.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return model.ErrBillAlreadyExists
	}
	return errors.Wrap(err, "create bill")
}

func (r *PGRepository) ListBills(ctx context.Context, f *dto.BillFilters) ([]model.SupplierBill, int, error) {
	var items []model.SupplierBill
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.RestaurantID != "" {
		conditions = append(conditions, "restaurant_id = :restaurant_id")
		args["restaurant_id"] = f.RestaurantID
	}
	if f.SupplierID != "" {
		conditions = append(conditions, "supplier_id = :supplier_id")
		args["supplier_id"] = f.SupplierID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM supplier_bills" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM supplier_bills" + whereClause + " ORDER BY bill_date DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) ListPayments(ctx context.Context, billID string) ([]model.SupplierPayment, error) {
	var payments []model.SupplierPayment
	err := r.DB.SelectContext(ctx, &payments,
		`SELECT * FROM supplier_payments WHERE bill_id = $1 ORDER BY payment_date ASC`, billID)
	return payments, err
}

const insertPaymentQuery = `
    INSERT INTO supplier_payments (
        id, bill_id, restaurant_id, payment_amount, payment_method,
        payment_date, reference_number, notes, status, created_at, updated_at
    )
    VALUES (
        :id, :bill_id, :restaurant_id, :payment_amount, :payment_method,
        :payment_date, :reference_number, :notes, :status, :created_at, :updated_at
    )
`

const updateBillAmountsQuery = `
    UPDATE supplier_bills
    SET paid_amount = :paid_amount,
        outstanding_amount = :outstanding_amount,
        status = :status,
        updated_at = :updated_at
    WHERE id = :id
`

// RecordPayment is the only write path for bill amounts. The row lock closes
// the check-then-act race of two payments both reading the same outstanding
// amount.
func (r *PGRepository) RecordPayment(ctx context.Context, payment *model.SupplierPayment, now time.Time) (*model.SupplierBill, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var bill model.SupplierBill
	err = tx.GetContext(ctx, &bill,
		`SELECT * FROM supplier_bills WHERE id = $1 FOR UPDATE`, payment.BillID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrBillNotFound
		}
		return nil, errors.Wrap(err, "lock bill")
	}

	if err := bill.ApplyPayment(payment.PaymentAmount, now); err != nil {
		return nil, err
	}

	payment.RestaurantID = bill.RestaurantID
	if _, err := tx.NamedExecContext(ctx, insertPaymentQuery, payment); err != nil {
		return nil, errors.Wrap(err, "insert payment")
	}
	if _, err := tx.NamedExecContext(ctx, updateBillAmountsQuery, &bill); err != nil {
		return nil, errors.Wrap(err, "update bill amounts")
	}

	return &bill, tx.Commit()
}

func (r *PGRepository) CancelBill(ctx context.Context, id string, now time.Time) (*model.SupplierBill, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var bill model.SupplierBill
	err = tx.GetContext(ctx, &bill, `SELECT * FROM supplier_bills WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrBillNotFound
		}
		return nil, errors.Wrap(err, "lock bill")
	}

	if bill.Status == model.BillStatusPaid {
		return nil, errors.New("cannot cancel a paid bill")
	}
	bill.Status = model.BillStatusCancelled
	bill.UpdatedAt = now

	if _, err := tx.NamedExecContext(ctx, updateBillAmountsQuery, &bill); err != nil {
		return nil, errors.Wrap(err, "cancel bill")
	}

	return &bill, tx.Commit()
}

func (r *PGRepository) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE supplier_bills
        SET status = $1, updated_at = $2
        WHERE outstanding_amount > 0 AND due_date < $2 AND status IN ($3, $4)
    `, model.BillStatusOverdue, now, model.BillStatusPending, model.BillStatusPartiallyPaid)
	if err != nil {
		return 0, errors.Wrap(err, "mark overdue")
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *PGRepository) ReconcileOverpaid(ctx context.Context, now time.Time) (int, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE supplier_bills
        SET paid_amount = total_amount,
            outstanding_amount = 0,
            status = $1,
            updated_at = $2
        WHERE paid_amount > total_amount AND status != $3
    `, model.BillStatusPaid, now, model.BillStatusCancelled)
	if err != nil {
		return 0, errors.Wrap(err, "reconcile overpaid")
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *PGRepository) GetPurchaseOrder(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.DB.GetContext(ctx, &po, `SELECT * FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get purchase order")
	}

	err = r.DB.SelectContext(ctx, &po.Items,
		`SELECT * FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, errors.Wrap(err, "get purchase order items")
	}
	return &po, nil
}

func (r *PGRepository) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	var supplier model.Supplier
	err := r.DB.GetContext(ctx, &supplier, `SELECT * FROM suppliers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get supplier")
	}
	return &supplier, nil
}
