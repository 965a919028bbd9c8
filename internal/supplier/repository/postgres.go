package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/kusinaops/inventory-service/internal/model"
	"github.com/kusinaops/inventory-service/internal/supplier/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertSupplierQuery = `
    INSERT INTO suppliers (
        id, restaurant_id, name, contact_person, email, phone, address,
        payment_terms, is_active, created_at, updated_at
    )
    VALUES (
        :id, :restaurant_id, :name, :contact_person, :email, :phone, :address,
        :payment_terms, :is_active, :created_at, :updated_at
    )
`

func (r *PGRepository) Create(ctx context.Context, s *model.Supplier) error {
	_, err := r.DB.NamedExecContext(ctx, insertSupplierQuery, s)
	return errors.Wrap(err, "create supplier")
}

func (r *PGRepository) Update(ctx context.Context, s *model.Supplier) error {
	_, err := r.DB.NamedExecContext(ctx, `
        UPDATE suppliers
        SET name = :name,
            contact_person = :contact_person,
            email = :email,
            phone = :phone,
            address = :address,
            payment_terms = :payment_terms,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `, s)
	return errors.Wrap(err, "update supplier")
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Supplier, error) {
	var s model.Supplier
	err := r.DB.GetContext(ctx, &s, `SELECT * FROM suppliers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find supplier")
	}
	return &s, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.SupplierFilters) ([]model.Supplier, int, error) {
	var items []model.Supplier
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.RestaurantID != "" {
		conditions = append(conditions, "restaurant_id = :restaurant_id")
		args["restaurant_id"] = f.RestaurantID
	}
	if f.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM suppliers" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM suppliers" + whereClause + " ORDER BY name ASC"
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

const upsertOfferQuery = `
    INSERT INTO ingredient_suppliers (
        id, ingredient_id, supplier_id, package_unit, package_quantity,
        package_contents_quantity, package_contents_unit, package_price,
        minimum_order_quantity, is_active, created_at, updated_at
    )
    VALUES (
        :id, :ingredient_id, :supplier_id, :package_unit, :package_quantity,
        :package_contents_quantity, :package_contents_unit, :package_price,
        :minimum_order_quantity, :is_active, :created_at, :updated_at
    )
    ON CONFLICT (ingredient_id, supplier_id)
    DO UPDATE SET
        package_unit = EXCLUDED.package_unit,
        package_quantity = EXCLUDED.package_quantity,
        package_contents_quantity = EXCLUDED.package_contents_quantity,
        package_contents_unit = EXCLUDED.package_contents_unit,
        package_price = EXCLUDED.package_price,
        minimum_order_quantity = EXCLUDED.minimum_order_quantity,
        is_active = EXCLUDED.is_active,
        updated_at = EXCLUDED.updated_at
`

func (r *PGRepository) UpsertOffer(ctx context.Context, offer *model.IngredientSupplier) error {
	_, err := r.DB.NamedExecContext(ctx, upsertOfferQuery, offer)
	return errors.Wrap(err, "upsert offer")
}

func (r *PGRepository) ListOffers(ctx context.Context, ingredientID string) ([]model.IngredientSupplier, error) {
	var offers []model.IngredientSupplier
	err := r.DB.SelectContext(ctx, &offers,
		`SELECT * FROM ingredient_suppliers WHERE ingredient_id = $1 ORDER BY created_at ASC`, ingredientID)
	return offers, err
}

func (r *PGRepository) FindIngredientByID(ctx context.Context, id string) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := r.DB.GetContext(ctx, &ing, `SELECT * FROM ingredients WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find ingredient")
	}
	return &ing, nil
}
