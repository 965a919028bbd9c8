package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kusinaops/inventory-service/internal/model"
	"github.com/kusinaops/inventory-service/internal/supplier"
	"github.com/kusinaops/inventory-service/internal/supplier/dto"
	"github.com/kusinaops/inventory-service/internal/unit"
	"github.com/kusinaops/inventory-service/pkg/logger"
)

type supplierUseCase struct {
	repo   supplier.Repository
	logger logger.ZapLogger
}

func NewSupplierUseCase(repo supplier.Repository, log logger.ZapLogger) supplier.UseCase {
	return &supplierUseCase{
		repo:   repo,
		logger: log,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (uc *supplierUseCase) CreateSupplier(ctx context.Context, input *dto.CreateSupplierInput) (*model.Supplier, error) {
	if input.Name == "" {
		return nil, errors.New("supplier name is required")
	}

	now := time.Now()
	s := &model.Supplier{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		RestaurantID:  input.RestaurantID,
		Name:          input.Name,
		ContactPerson: optional(input.ContactPerson),
		Email:         optional(input.Email),
		Phone:         optional(input.Phone),
		Address:       optional(input.Address),
		PaymentTerms:  input.PaymentTerms,
		IsActive:      true,
	}

	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *supplierUseCase) UpdateSupplier(ctx context.Context, input *dto.UpdateSupplierInput) (*model.Supplier, error) {
	s, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if s == nil || s.RestaurantID != input.RestaurantID {
		return nil, model.ErrSupplierNotFound
	}

	s.Name = input.Name
	s.ContactPerson = optional(input.ContactPerson)
	s.Email = optional(input.Email)
	s.Phone = optional(input.Phone)
	s.Address = optional(input.Address)
	s.PaymentTerms = input.PaymentTerms
	s.IsActive = input.IsActive
	s.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *supplierUseCase) GetSupplier(ctx context.Context, restaurantID, id string) (*model.Supplier, error) {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil || s.RestaurantID != restaurantID {
		return nil, model.ErrSupplierNotFound
	}
	return s, nil
}

func (uc *supplierUseCase) ListSuppliers(ctx context.Context, filters *dto.SupplierFilters) ([]model.Supplier, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *supplierUseCase) UpsertOffer(ctx context.Context, input *dto.UpsertOfferInput) (*model.IngredientSupplier, error) {
	ing, err := uc.repo.FindIngredientByID(ctx, input.IngredientID)
	if err != nil {
		return nil, err
	}
	if ing == nil || ing.RestaurantID != input.RestaurantID {
		return nil, model.ErrIngredientNotFound
	}

	if input.PackageContentsQuantity <= 0 {
		return nil, errors.New("package contents quantity must be positive")
	}
	// The contents unit must live in the same family as the ingredient's
	// base unit, otherwise receiving could never convert it.
	if !unit.Compatible(input.PackageContentsUnit, ing.BaseUnit) {
		return nil, &model.IncompatibleUnitsError{From: input.PackageContentsUnit, To: ing.BaseUnit}
	}

	now := time.Now()
	offer := &model.IngredientSupplier{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		IngredientID:            input.IngredientID,
		SupplierID:              input.SupplierID,
		PackageUnit:             input.PackageUnit,
		PackageQuantity:         input.PackageQuantity,
		PackageContentsQuantity: input.PackageContentsQuantity,
		PackageContentsUnit:     input.PackageContentsUnit,
		PackagePrice:            input.PackagePrice,
		MinimumOrderQuantity:    input.MinimumOrderQuantity,
		IsActive:                input.IsActive,
	}

	if err := uc.repo.UpsertOffer(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

func (uc *supplierUseCase) ListOffers(ctx context.Context, restaurantID, ingredientID string) ([]model.IngredientSupplier, error) {
	ing, err := uc.repo.FindIngredientByID(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	if ing == nil || ing.RestaurantID != restaurantID {
		return nil, model.ErrIngredientNotFound
	}
	return uc.repo.ListOffers(ctx, ingredientID)
}
