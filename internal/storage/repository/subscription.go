package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

const activeSubscriptionIndex = "uq_subscriptions_active_product"

const subscriptionColumns = `s.id, s.client_id, s.product_id, s.start_date, s.renewal_period_months, s.price, s.is_active`

// subscriptionFrom отсекает подписки мягко удалённых клиентов.
const subscriptionFrom = `FROM subscriptions s
	JOIN clients c ON c.id = s.client_id AND NOT c.is_soft_deleted`

func scanSubscription(row rowScanner) (models.Subscription, error) {
	var (
		sub    models.Subscription
		months int
	)
	err := row.Scan(&sub.ID, &sub.ClientID, &sub.ProductID, &sub.StartDate, &months, &sub.Price, &sub.Active)
	sub.RenewalPeriod = models.RenewalPeriod(months)
	return sub, err
}

// CreateSubscription вставляет подписку вместе со снимками применённых скидок.
// Вторая активная подписка клиента на продукт отклоняется частичным
// уникальным индексом и возвращается как apperr.ErrDuplicateSub.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error) {
	const op = "storage.CreateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO subscriptions (client_id, product_id, start_date, renewal_period_months, price, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		sub.ClientID, sub.ProductID, sub.StartDate, sub.RenewalPeriod.Months(), sub.Price, sub.Active).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, activeSubscriptionIndex) {
			return 0, fmt.Errorf("%s: %w", op, apperr.Wrap(apperr.ErrDuplicateSub, err,
				"client %d already has an active subscription for product %d", sub.ClientID, sub.ProductID))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, d := range sub.Discounts {
		_, err := s.conn(ctx).ExecContext(ctx,
			`INSERT INTO subscription_discounts (subscription_id, discount_id, name, category, percentage, applied_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, d.DiscountID, d.Name, string(d.Category), d.Percentage, d.AppliedAt)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}
	return id, nil
}

// Subscription возвращает подписку с платежами и скидками.
func (s *Storage) Subscription(ctx context.Context, id int64) (*models.Subscription, error) {
	return s.subscription(ctx, "storage.Subscription", id, false)
}

// SubscriptionForUpdate возвращает подписку с платежами и блокирует её строку до конца транзакции.
func (s *Storage) SubscriptionForUpdate(ctx context.Context, id int64) (*models.Subscription, error) {
	return s.subscription(ctx, "storage.SubscriptionForUpdate", id, true)
}

func (s *Storage) subscription(ctx context.Context, op string, id int64, lock bool) (*models.Subscription, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + ` ` + subscriptionFrom + ` WHERE s.id = $1`
	if lock {
		query += ` FOR UPDATE OF s`
	}
	sub, err := scanSubscription(s.conn(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.NotFound("subscription", id))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payments, err := s.subscriptionPayments(ctx, []int64{sub.ID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.Payments = payments[sub.ID]

	sub.Discounts, err = s.appliedDiscounts(ctx,
		`SELECT discount_id, name, category, percentage, applied_at
		 FROM subscription_discounts WHERE subscription_id = $1 ORDER BY discount_id`, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// SubscriptionsByClient возвращает подписки клиента с платежами.
func (s *Storage) SubscriptionsByClient(ctx context.Context, clientID int64) ([]models.Subscription, error) {
	const op = "storage.SubscriptionsByClient"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	subs, err := s.listSubscriptions(ctx,
		`SELECT `+subscriptionColumns+` `+subscriptionFrom+` WHERE s.client_id = $1 ORDER BY s.id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// AddSubscriptionPayment добавляет платёж по подписке и возвращает его ID.
func (s *Storage) AddSubscriptionPayment(ctx context.Context, p models.SubscriptionPayment) (int64, error) {
	const op = "storage.AddSubscriptionPayment"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO subscription_payments (subscription_id, amount, paid_at) VALUES ($1, $2, $3) RETURNING id`,
		p.SubscriptionID, p.Amount, p.PaidAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// DeactivateSubscription переводит подписку в неактивные.
func (s *Storage) DeactivateSubscription(ctx context.Context, id int64) error {
	const op = "storage.DeactivateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.conn(ctx).ExecContext(ctx, `UPDATE subscriptions SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(result, op, "subscription", id)
}

// ActiveSubscriptionIDs возвращает ID активных подписок не удалённых клиентов.
func (s *Storage) ActiveSubscriptionIDs(ctx context.Context) ([]int64, error) {
	const op = "storage.ActiveSubscriptionIDs"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT s.id `+subscriptionFrom+` WHERE s.is_active ORDER BY s.id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

func (s *Storage) listSubscriptions(ctx context.Context, query string, args ...any) ([]models.Subscription, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]models.Subscription, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
		ids = append(ids, sub.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return subs, nil
	}

	payments, err := s.subscriptionPayments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		subs[i].Payments = payments[subs[i].ID]
	}
	return subs, nil
}

func (s *Storage) subscriptionPayments(ctx context.Context, subscriptionIDs []int64) (map[int64][]models.SubscriptionPayment, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, subscription_id, amount, paid_at FROM subscription_payments
		 WHERE subscription_id = ANY($1) ORDER BY paid_at, id`, subscriptionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]models.SubscriptionPayment, len(subscriptionIDs))
	for rows.Next() {
		var p models.SubscriptionPayment
		if err := rows.Scan(&p.ID, &p.SubscriptionID, &p.Amount, &p.PaidAt); err != nil {
			return nil, err
		}
		result[p.SubscriptionID] = append(result[p.SubscriptionID], p)
	}
	return result, rows.Err()
}
