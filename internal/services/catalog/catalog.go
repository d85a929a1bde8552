// Package catalog управляет каталогом: продуктами, их версиями и скидками.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// CatalogRepository определяет методы хранилища для каталога.
type CatalogRepository interface {
	CreateProduct(ctx context.Context, p models.Product) (int64, error)
	ProductExists(ctx context.Context, productID int64) (bool, error)
	CreateProductVersion(ctx context.Context, v models.ProductVersion) (int64, error)
	CreateDiscount(ctx context.Context, d models.Discount) (int64, error)
	ListDiscounts(ctx context.Context, category models.DiscountCategory) ([]models.Discount, error)
}

// DiscountInvalidator сбрасывает закэшированные скидки категории.
type DiscountInvalidator interface {
	Invalidate(category models.DiscountCategory)
}

// CatalogService реализует ведение каталога.
type CatalogService struct {
	repo      CatalogRepository
	discounts DiscountInvalidator
	log       *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo CatalogRepository, discounts DiscountInvalidator, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:      repo,
		discounts: discounts,
		log:       log,
	}
}

// CreateProduct добавляет продукт в каталог.
func (s *CatalogService) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	id, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("catalog.CreateProduct: %w", err)
	}
	p.ID = id
	s.log.Info("created product", slog.Int64("id", id), slog.String("name", p.Name))
	return &p, nil
}

// AddVersion добавляет версию существующего продукта.
func (s *CatalogService) AddVersion(ctx context.Context, v models.ProductVersion) (*models.ProductVersion, error) {
	const op = "catalog.AddVersion"

	exists, err := s.repo.ProductExists(ctx, v.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, apperr.NotFound("product", v.ProductID))
	}
	if v.YearlyPrice.IsNegative() {
		return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrInvalidAmount, "yearly price must not be negative"))
	}

	v.ID, err = s.repo.CreateProductVersion(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created product version",
		slog.Int64("id", v.ID),
		slog.Int64("product_id", v.ProductID),
		sl.Money("yearly_price", v.YearlyPrice))
	return &v, nil
}

var hundred = decimal.NewFromInt(100)

// CreateDiscount добавляет скидку и сбрасывает кэш её категории, чтобы
// новая скидка сразу участвовала в выборе.
func (s *CatalogService) CreateDiscount(ctx context.Context, d models.Discount) (*models.Discount, error) {
	const op = "catalog.CreateDiscount"

	switch {
	case !d.Category.Valid():
		return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrInvalidDiscount, "unknown category %q", d.Category))
	case d.Percentage.IsNegative() || d.Percentage.GreaterThan(hundred):
		return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrInvalidDiscount, "percentage must be between 0 and 100"))
	case d.EndDate.Before(d.StartDate):
		return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrInvalidDiscount, "end date is before start date"))
	case d.Category == models.DiscountLoyalty && d.ProductID != nil:
		return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrInvalidDiscount, "loyalty discount cannot be scoped to a product"))
	}
	if d.ProductID != nil {
		exists, err := s.repo.ProductExists(ctx, *d.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return nil, fmt.Errorf("%s: %w", op, apperr.NotFound("product", *d.ProductID))
		}
	}

	id, err := s.repo.CreateDiscount(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	d.ID = id
	s.discounts.Invalidate(d.Category)

	s.log.Info("created discount", slog.Int64("id", id), slog.String("category", string(d.Category)))
	return &d, nil
}

// ListDiscounts возвращает все скидки категории.
func (s *CatalogService) ListDiscounts(ctx context.Context, category models.DiscountCategory) ([]models.Discount, error) {
	if !category.Valid() {
		return nil, apperr.New(apperr.ErrInvalidDiscount, "unknown category %q", category)
	}
	list, err := s.repo.ListDiscounts(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("catalog.ListDiscounts: %w", err)
	}
	return list, nil
}
