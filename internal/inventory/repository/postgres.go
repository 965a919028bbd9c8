package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/kusinaops/inventory-service/internal/inventory/dto"
	"github.com/kusinaops/inventory-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetIngredient(ctx context.Context, id string) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := r.DB.GetContext(ctx, &ing, `SELECT * FROM ingredients WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // caller decides whether missing is an error
		}
		return nil, errors.Wrap(err, "get ingredient")
	}
	return &ing, nil
}

func (r *PGRepository) GetIngredients(ctx context.Context, ids []string) ([]model.Ingredient, error) {
	if len(ids) == 0 {
		return []model.Ingredient{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM ingredients WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var items []model.Ingredient
	err = r.DB.SelectContext(ctx, &items, query, args...)
	return items, err
}

func (r *PGRepository) ListLowStock(ctx context.Context, restaurantID string) ([]model.Ingredient, error) {
	var items []model.Ingredient
	query := `
        SELECT * FROM ingredients
        WHERE restaurant_id = $1 AND is_active = true AND current_stock <= reorder_level
        ORDER BY current_stock / NULLIF(reorder_level, 0) ASC NULLS FIRST
    `
	err := r.DB.SelectContext(ctx, &items, query, restaurantID)
	return items, err
}

func (r *PGRepository) GetRecipe(ctx context.Context, dishID string) ([]model.DishIngredient, error) {
	var lines []model.DishIngredient
	err := r.DB.SelectContext(ctx, &lines,
		`SELECT * FROM dish_ingredients WHERE dish_id = $1 ORDER BY created_at ASC`, dishID)
	return lines, err
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

func (r *PGRepository) MarkPurchaseOrderProcessed(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE purchase_orders
        SET processed_at = $2, status = $3, updated_at = $2
        WHERE id = $1 AND processed_at IS NULL
    `, id, at, model.PurchaseOrderStatusReceived)
	if err != nil {
		return false, errors.Wrap(err, "mark purchase order processed")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PGRepository) GetSupplierOffer(ctx context.Context, ingredientID, supplierID string) (*model.IngredientSupplier, error) {
	var offer model.IngredientSupplier
	query := `
        SELECT * FROM ingredient_suppliers
        WHERE ingredient_id = $1 AND supplier_id = $2 AND is_active = true
    `
	err := r.DB.GetContext(ctx, &offer, query, ingredientID, supplierID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get supplier offer")
	}
	return &offer, nil
}

const insertMovementQuery = `
    INSERT INTO stock_movements (
        id, restaurant_id, ingredient_id, action,
        quantity_change, quantity_before, quantity_after,
        packages_before, packages_after,
        reference_type, reference_id, notes, created_by, created_at
    )
    VALUES (
        :id, :restaurant_id, :ingredient_id, :action,
        :quantity_change, :quantity_before, :quantity_after,
        :packages_before, :packages_after,
        :reference_type, :reference_id, :notes, :created_by, :created_at
    )
`

// applyChangeTx performs the locked read-modify-write for one ingredient and
// writes its movement row. The non-negativity checks must run here, after the
// FOR UPDATE read, or two concurrent decreases could both pass a pre-check.
func applyChangeTx(ctx context.Context, tx *sqlx.Tx, change *dto.StockChange, movement *model.StockMovement) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := tx.GetContext(ctx, &ing, `SELECT * FROM ingredients WHERE id = $1 FOR UPDATE`, change.IngredientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrIngredientNotFound
		}
		return nil, errors.Wrap(err, "lock ingredient")
	}

	newStock := ing.CurrentStock + change.StockDelta
	newPackages := ing.Packages + change.PackageDelta
	if newStock < 0 {
		return nil, &model.InsufficientStockError{
			IngredientID: ing.ID,
			Requested:    -change.StockDelta,
			Available:    ing.CurrentStock,
		}
	}
	if newPackages < 0 {
		return nil, &model.InsufficientPackagesError{
			IngredientID: ing.ID,
			Requested:    -change.PackageDelta,
			Available:    ing.Packages,
		}
	}

	movement.IngredientID = ing.ID
	movement.RestaurantID = ing.RestaurantID
	movement.QuantityBefore = ing.CurrentStock
	movement.QuantityAfter = newStock
	movement.PackagesBefore = ing.Packages
	movement.PackagesAfter = newPackages

	now := movement.CreatedAt
	_, err = tx.ExecContext(ctx, `
        UPDATE ingredients
        SET current_stock = $2, packages = $3, updated_at = $4
        WHERE id = $1
    `, ing.ID, newStock, newPackages, now)
	if err != nil {
		return nil, errors.Wrap(err, "update ingredient stock")
	}

	if _, err := tx.NamedExecContext(ctx, insertMovementQuery, movement); err != nil {
		return nil, errors.Wrap(err, "log stock movement")
	}

	ing.CurrentStock = newStock
	ing.Packages = newPackages
	ing.UpdatedAt = now
	return &ing, nil
}

func (r *PGRepository) ApplyStockChange(ctx context.Context, change *dto.StockChange, movement *model.StockMovement) (*model.Ingredient, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ing, err := applyChangeTx(ctx, tx, change, movement)
	if err != nil {
		return nil, err
	}
	return ing, tx.Commit()
}

func (r *PGRepository) ApplyStockChanges(ctx context.Context, changes []dto.StockChange, movements []model.StockMovement) ([]model.Ingredient, error) {
	if len(changes) != len(movements) {
		return nil, fmt.Errorf("changes/movements length mismatch: %d vs %d", len(changes), len(movements))
	}
	if len(changes) == 0 {
		return []model.Ingredient{}, nil
	}

	// Lock rows in ascending ingredient id order so concurrent multi-row
	// deductions serialize instead of deadlocking.
	order := make([]int, len(changes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return changes[order[a]].IngredientID < changes[order[b]].IngredientID
	})

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	updated := make([]model.Ingredient, len(changes))
	for _, i := range order {
		ing, err := applyChangeTx(ctx, tx, &changes[i], &movements[i])
		if err != nil {
			return nil, err // rollback, nothing applied
		}
		updated[i] = *ing
	}

	return updated, tx.Commit()
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var items []model.StockMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.RestaurantID != "" {
		conditions = append(conditions, "restaurant_id = :restaurant_id")
		args["restaurant_id"] = f.RestaurantID
	}
	if f.IngredientID != "" {
		conditions = append(conditions, "ingredient_id = :ingredient_id")
		args["ingredient_id"] = f.IngredientID
	}
	if f.Action != "" {
		conditions = append(conditions, "action = :action")
		args["action"] = f.Action
	}
	if f.ReferenceType != "" {
		conditions = append(conditions, "reference_type = :reference_type")
		args["reference_type"] = f.ReferenceType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
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
