package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// CreateProduct вставляет продукт и возвращает его ID.
func (s *Storage) CreateProduct(ctx context.Context, p models.Product) (int64, error) {
	const op = "storage.CreateProduct"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO products (name, description, category) VALUES ($1, $2, $3) RETURNING id`,
		p.Name, p.Description, p.Category).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "") {
			return 0, fmt.Errorf("%s: %w", op, apperr.Wrap(apperr.ErrDuplicateProduct, err, "product %q already exists", p.Name))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ProductExists сообщает, существует ли продукт.
func (s *Storage) ProductExists(ctx context.Context, productID int64) (bool, error) {
	const op = "storage.ProductExists"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CreateProductVersion вставляет версию продукта и возвращает её ID.
func (s *Storage) CreateProductVersion(ctx context.Context, v models.ProductVersion) (int64, error) {
	const op = "storage.CreateProductVersion"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO product_versions (product_id, version, yearly_price) VALUES ($1, $2, $3) RETURNING id`,
		v.ProductID, v.Version, v.YearlyPrice).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "") {
			return 0, fmt.Errorf("%s: %w", op, apperr.Wrap(apperr.ErrDuplicateProduct, err,
				"version %s of product %d already exists", v.Version, v.ProductID))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ProductVersion возвращает версию продукта по ID.
func (s *Storage) ProductVersion(ctx context.Context, id int64) (*models.ProductVersion, error) {
	const op = "storage.ProductVersion"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var v models.ProductVersion
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, product_id, version, yearly_price FROM product_versions WHERE id = $1`, id).
		Scan(&v.ID, &v.ProductID, &v.Version, &v.YearlyPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.NotFound("product version", id))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &v, nil
}

// CreateDiscount вставляет скидку и возвращает её ID.
func (s *Storage) CreateDiscount(ctx context.Context, d models.Discount) (int64, error) {
	const op = "storage.CreateDiscount"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var productID sql.NullInt64
	if d.ProductID != nil {
		productID = sql.NullInt64{Int64: *d.ProductID, Valid: true}
	}
	var id int64
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO discounts (name, category, product_id, percentage, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		d.Name, string(d.Category), productID, d.Percentage, d.StartDate, d.EndDate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListDiscounts возвращает все скидки категории, упорядоченные по ID.
func (s *Storage) ListDiscounts(ctx context.Context, category models.DiscountCategory) ([]models.Discount, error) {
	const op = "storage.ListDiscounts"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, name, category, product_id, percentage, start_date, end_date
		 FROM discounts WHERE category = $1 ORDER BY id`, string(category))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]models.Discount, 0)
	for rows.Next() {
		var (
			d         models.Discount
			cat       string
			productID sql.NullInt64
		)
		if err := rows.Scan(&d.ID, &d.Name, &cat, &productID, &d.Percentage, &d.StartDate, &d.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		d.Category = models.DiscountCategory(cat)
		if productID.Valid {
			id := productID.Int64
			d.ProductID = &id
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
