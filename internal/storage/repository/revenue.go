package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/software-billing/internal/models"
)

func productArg(productID *int64) sql.NullInt64 {
	if productID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *productID, Valid: true}
}

// SumContractPayments суммирует платежи по договорам в окне [From, To).
func (s *Storage) SumContractPayments(ctx context.Context, filter models.RevenueFilter) (decimal.Decimal, error) {
	const op = "storage.SumContractPayments"
	if err := checkCtx(ctx, op); err != nil {
		return decimal.Zero, err
	}

	query := `SELECT COALESCE(SUM(p.amount), 0)
			  FROM contract_payments p
			  JOIN contracts ct ON ct.id = p.contract_id
			  JOIN product_versions pv ON pv.id = ct.product_version_id
			  JOIN clients c ON c.id = ct.client_id AND NOT c.is_soft_deleted
			  WHERE p.paid_at >= $1 AND p.paid_at < $2
			    AND ($3::BIGINT IS NULL OR pv.product_id = $3)`
	var total decimal.Decimal
	err := s.conn(ctx).QueryRowContext(ctx, query, filter.From, filter.To, productArg(filter.ProductID)).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// SumSubscriptionPayments суммирует платежи по подпискам в окне [From, To).
func (s *Storage) SumSubscriptionPayments(ctx context.Context, filter models.RevenueFilter) (decimal.Decimal, error) {
	const op = "storage.SumSubscriptionPayments"
	if err := checkCtx(ctx, op); err != nil {
		return decimal.Zero, err
	}

	query := `SELECT COALESCE(SUM(p.amount), 0)
			  FROM subscription_payments p
			  JOIN subscriptions s ON s.id = p.subscription_id
			  JOIN clients c ON c.id = s.client_id AND NOT c.is_soft_deleted
			  WHERE p.paid_at >= $1 AND p.paid_at < $2
			    AND ($3::BIGINT IS NULL OR s.product_id = $3)`
	var total decimal.Decimal
	err := s.conn(ctx).QueryRowContext(ctx, query, filter.From, filter.To, productArg(filter.ProductID)).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// OpenContracts возвращает неподписанные договоры, срок которых включает at.
func (s *Storage) OpenContracts(ctx context.Context, productID *int64, at time.Time) ([]models.Contract, error) {
	const op = "storage.OpenContracts"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	contracts, err := s.listContracts(ctx,
		`SELECT `+contractColumns+` `+contractFrom+`
		 WHERE NOT ct.is_signed AND ct.start_date <= $1 AND ct.end_date >= $1
		   AND ($2::BIGINT IS NULL OR pv.product_id = $2)
		 ORDER BY ct.id`, at, productArg(productID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return contracts, nil
}

// ActiveSubscriptions возвращает активные подписки, при необходимости на один продукт.
func (s *Storage) ActiveSubscriptions(ctx context.Context, productID *int64) ([]models.Subscription, error) {
	const op = "storage.ActiveSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	subs, err := s.listSubscriptions(ctx,
		`SELECT `+subscriptionColumns+` `+subscriptionFrom+`
		 WHERE s.is_active AND ($1::BIGINT IS NULL OR s.product_id = $1)
		 ORDER BY s.id`, productArg(productID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// SumActiveSubscriptionPayments суммирует все платежи по активным подпискам
// не удалённых клиентов.
func (s *Storage) SumActiveSubscriptionPayments(ctx context.Context) (decimal.Decimal, error) {
	const op = "storage.SumActiveSubscriptionPayments"
	if err := checkCtx(ctx, op); err != nil {
		return decimal.Zero, err
	}

	query := `SELECT COALESCE(SUM(p.amount), 0)
			  FROM subscription_payments p
			  JOIN subscriptions s ON s.id = p.subscription_id AND s.is_active
			  JOIN clients c ON c.id = s.client_id AND NOT c.is_soft_deleted`
	var total decimal.Decimal
	if err := s.conn(ctx).QueryRowContext(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}
