package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/kusinaops/inventory-service/internal/catalog/dto"
	"github.com/kusinaops/inventory-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertIngredientQuery = `
    INSERT INTO ingredients (
        id, restaurant_id, name, base_unit, current_stock, packages,
        reorder_level, is_active, created_at, updated_at
    )
    VALUES (
        :id, :restaurant_id, :name, :base_unit, :current_stock, :packages,
        :reorder_level, :is_active, :created_at, :updated_at
    )
`

func (r *PGRepository) CreateIngredient(ctx context.Context, ing *model.Ingredient) error {
	_, err := r.DB.NamedExecContext(ctx, insertIngredientQuery, ing)
	return errors.Wrap(err, "create ingredient")
}

// UpdateIngredient touches catalog fields only; stock and packages move
// exclusively through the inventory ledger.
func (r *PGRepository) UpdateIngredient(ctx context.Context, ing *model.Ingredient) error {
	_, err := r.DB.NamedExecContext(ctx, `
        UPDATE ingredients
        SET name = :name,
            reorder_level = :reorder_level,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `, ing)
	return errors.Wrap(err, "update ingredient")
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

func (r *PGRepository) FindIngredients(ctx context.Context, f *dto.IngredientFilters) ([]model.Ingredient, int, error) {
	var items []model.Ingredient
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.RestaurantID != "" {
		conditions = append(conditions, "restaurant_id = :restaurant_id")
		args["restaurant_id"] = f.RestaurantID
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "name ILIKE :search")
		args["search"] = "%" + f.SearchQuery + "%"
	}
	if f.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM ingredients" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM ingredients" + whereClause + " ORDER BY name ASC"
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

const insertDishQuery = `
    INSERT INTO dishes (
        id, restaurant_id, name, description, price, is_active, created_at, updated_at
    )
    VALUES (
        :id, :restaurant_id, :name, :description, :price, :is_active, :created_at, :updated_at
    )
`

const insertRecipeLineQuery = `
    INSERT INTO dish_ingredients (
        id, dish_id, ingredient_id, quantity_needed, unit_of_measure,
        is_optional, created_at, updated_at
    )
    VALUES (
        :id, :dish_id, :ingredient_id, :quantity_needed, :unit_of_measure,
        :is_optional, :created_at, :updated_at
    )
`

func (r *PGRepository) CreateDish(ctx context.Context, dish *model.Dish) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertDishQuery, dish); err != nil {
		return errors.Wrap(err, "create dish")
	}
	for i := range dish.Recipe {
		if _, err := tx.NamedExecContext(ctx, insertRecipeLineQuery, &dish.Recipe[i]); err != nil {
			return errors.Wrap(err, "create recipe line")
		}
	}

	return tx.Commit()
}

func (r *PGRepository) FindDishByID(ctx context.Context, id string) (*model.Dish, error) {
	var dish model.Dish
	err := r.DB.GetContext(ctx, &dish, `SELECT * FROM dishes WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find dish")
	}

	err = r.DB.SelectContext(ctx, &dish.Recipe,
		`SELECT * FROM dish_ingredients WHERE dish_id = $1 ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, errors.Wrap(err, "find dish recipe")
	}
	return &dish, nil
}

func (r *PGRepository) FindDishes(ctx context.Context, f *dto.DishFilters) ([]model.Dish, int, error) {
	var items []model.Dish
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

	countQuery := "SELECT count(*) FROM dishes" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM dishes" + whereClause + " ORDER BY name ASC"
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
