// Package subscription содержит бизнес-логику жизненного цикла подписок:
// создание с первым платежом, продление в окне оплаты и обнаружение просрочки.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/software-billing/internal/events"
	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/lib/month"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/metrics"
	"github.com/magabrotheeeer/software-billing/internal/models"
	"github.com/magabrotheeeer/software-billing/internal/services/pricing"
)

// SubscriptionRepository определяет методы хранилища, нужные для работы с подписками.
type SubscriptionRepository interface {
	// WithinTx выполняет fn в одной транзакции.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	// LockClient блокирует запись клиента до конца транзакции и сообщает, существует ли он.
	LockClient(ctx context.Context, clientID int64) (bool, error)
	// ClientExists сообщает, существует ли клиент.
	ClientExists(ctx context.Context, clientID int64) (bool, error)
	// ProductExists сообщает, существует ли продукт.
	ProductExists(ctx context.Context, productID int64) (bool, error)
	// ContractsByClient возвращает договоры клиента с платежами.
	ContractsByClient(ctx context.Context, clientID int64) ([]models.Contract, error)
	// SubscriptionsByClient возвращает подписки клиента с платежами.
	SubscriptionsByClient(ctx context.Context, clientID int64) ([]models.Subscription, error)
	// CreateSubscription сохраняет подписку со скидками и возвращает её ID.
	// Вторая активная подписка клиента на тот же продукт отклоняется с apperr.ErrDuplicateSub.
	CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error)
	// SubscriptionForUpdate возвращает подписку с платежами и блокирует её до конца транзакции.
	SubscriptionForUpdate(ctx context.Context, id int64) (*models.Subscription, error)
	// Subscription возвращает подписку с платежами.
	Subscription(ctx context.Context, id int64) (*models.Subscription, error)
	// AddSubscriptionPayment добавляет платёж и возвращает его ID.
	AddSubscriptionPayment(ctx context.Context, p models.SubscriptionPayment) (int64, error)
	// DeactivateSubscription переводит подписку в неактивные.
	DeactivateSubscription(ctx context.Context, id int64) error
	// ActiveSubscriptionIDs возвращает ID всех активных подписок.
	ActiveSubscriptionIDs(ctx context.Context) ([]int64, error)
	// ActiveSubscriptions возвращает активные подписки, productID nil означает все продукты.
	ActiveSubscriptions(ctx context.Context, productID *int64) ([]models.Subscription, error)
	// SumActiveSubscriptionPayments суммирует платежи по активным подпискам.
	SumActiveSubscriptionPayments(ctx context.Context) (decimal.Decimal, error)
}

// DiscountResolver находит применимые скидки.
type DiscountResolver interface {
	ResolveBest(ctx context.Context, category models.DiscountCategory, productID *int64, at time.Time) (*models.Discount, error)
	ResolveLoyaltyPercent(ctx context.Context, at time.Time) (decimal.Decimal, error)
}

// SubscriptionService реализует жизненный цикл подписок.
type SubscriptionService struct {
	repo      SubscriptionRepository
	discounts DiscountResolver
	events    events.Publisher
	graceDays int
	log       *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
// graceDays — число льготных дней после конца периода, в которые ещё принимается оплата.
func NewSubscriptionService(repo SubscriptionRepository, discounts DiscountResolver, publisher events.Publisher,
	graceDays int, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:      repo,
		discounts: discounts,
		events:    publisher,
		graceDays: graceDays,
		log:       log,
	}
}

// Create создает активную подписку с началом в now и сразу записывает первый
// платёж по цене со скидкой.
func (s *SubscriptionService) Create(ctx context.Context, req models.SubscriptionRequest, now time.Time) (*models.Subscription, error) {
	const op = "subscription.Create"

	var created models.Subscription
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.repo.LockClient(ctx, req.ClientID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("client", req.ClientID)
		}
		exists, err = s.repo.ProductExists(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("product", req.ProductID)
		}

		period, err := models.ParseRenewalPeriod(req.RenewalPeriod)
		if err != nil {
			return apperr.Wrap(apperr.ErrInvalidPeriod, err, "renewal period must be 1-%d months", models.MaxRenewalMonths)
		}
		if !period.Valid() {
			return apperr.New(apperr.ErrInvalidPeriod, "renewal period must be 1-%d months, got %d",
				models.MaxRenewalMonths, period.Months())
		}
		if !req.Price.IsPositive() {
			return apperr.New(apperr.ErrInvalidAmount, "price must be greater than 0")
		}

		contracts, err := s.repo.ContractsByClient(ctx, req.ClientID)
		if err != nil {
			return err
		}
		subscriptions, err := s.repo.SubscriptionsByClient(ctx, req.ClientID)
		if err != nil {
			return err
		}
		for _, sub := range subscriptions {
			if sub.Active && sub.ProductID == req.ProductID {
				return apperr.New(apperr.ErrDuplicateSub, "client %d already has active subscription %d for product %d",
					req.ClientID, sub.ID, req.ProductID)
			}
		}

		productID := req.ProductID
		best, err := s.discounts.ResolveBest(ctx, models.DiscountSubscription, &productID, now)
		if err != nil {
			return err
		}
		percent := decimal.Zero
		if best != nil {
			percent = best.Percentage
		}
		if pricing.IsLoyal(contracts, subscriptions) {
			loyalty, err := s.discounts.ResolveLoyaltyPercent(ctx, now)
			if err != nil {
				return err
			}
			percent = pricing.CombinePercent(percent, loyalty)
		}

		created = models.Subscription{
			ClientID:      req.ClientID,
			ProductID:     req.ProductID,
			StartDate:     now,
			RenewalPeriod: period,
			Price:         req.Price,
			Active:        true,
		}
		if best != nil {
			created.Discounts = []models.AppliedDiscount{best.Snapshot(now)}
		}
		created.ID, err = s.repo.CreateSubscription(ctx, created)
		if err != nil {
			return err
		}

		first := models.SubscriptionPayment{
			SubscriptionID: created.ID,
			Amount:         pricing.SubscriptionPrice(req.Price, percent),
			PaidAt:         now,
		}
		first.ID, err = s.repo.AddSubscriptionPayment(ctx, first)
		if err != nil {
			return err
		}
		created.Payments = []models.SubscriptionPayment{first}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.SubscriptionsCreated.Inc()
	metrics.PaymentsRecorded.WithLabelValues(metrics.KindSubscription).Inc()
	s.log.Info("created new subscription",
		slog.Int64("id", created.ID),
		slog.Int64("client_id", created.ClientID),
		sl.Money("first_payment", created.Payments[0].Amount))
	events.Emit(ctx, s.events, s.log, events.New(events.SubscriptionCreated, now, created.Response()))

	return &created, nil
}

// AddRenewalPayment записывает оплату очередного периода. Сумма должна
// в точности совпадать с ценой из прайса за вычетом текущей скидки лояльности.
func (s *SubscriptionService) AddRenewalPayment(ctx context.Context, subscriptionID int64, amount decimal.Decimal, now time.Time) (*models.Subscription, error) {
	const op = "subscription.AddRenewalPayment"

	var sub *models.Subscription
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		sub, err = s.repo.SubscriptionForUpdate(ctx, subscriptionID)
		if err != nil {
			return err
		}
		if !sub.Active {
			return apperr.New(apperr.ErrInactive, "subscription %d is not active", sub.ID)
		}

		period := s.period(sub)
		if !period.InWindow(now) {
			return apperr.New(apperr.ErrWindowExpired, "renewal is accepted from %s to %s",
				period.NextDue.Format(time.RFC3339), period.WindowEnd.Format(time.RFC3339))
		}

		loyalty, err := s.discounts.ResolveLoyaltyPercent(ctx, now)
		if err != nil {
			return err
		}
		expected := pricing.SubscriptionPrice(sub.Price, loyalty)
		if !amount.Equal(expected) {
			return apperr.New(apperr.ErrPriceMismatch, "expected %s, got %s", expected.StringFixed(2), amount.StringFixed(2))
		}

		if paidWithin(sub.Payments, period) {
			return apperr.New(apperr.ErrAlreadyPaid, "period starting %s is already paid", period.NextDue.Format(time.RFC3339))
		}

		payment := models.SubscriptionPayment{SubscriptionID: sub.ID, Amount: amount, PaidAt: now}
		payment.ID, err = s.repo.AddSubscriptionPayment(ctx, payment)
		if err != nil {
			return err
		}
		sub.Payments = append(sub.Payments, payment)
		return nil
	})
	if err != nil {
		metrics.PaymentsRejected.WithLabelValues(metrics.KindSubscription, string(apperr.ReasonOf(err))).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.PaymentsRecorded.WithLabelValues(metrics.KindSubscription).Inc()
	s.log.Info("recorded renewal payment", slog.Int64("subscription_id", subscriptionID), sl.Money("amount", amount))
	events.Emit(ctx, s.events, s.log, events.New(events.SubscriptionRenewed, now, map[string]any{
		"subscription_id": subscriptionID,
		"amount":          amount,
	}))
	return sub, nil
}

// Cancel проверяет подписку на просрочку. Подписка деактивируется, только если
// текущий период не оплачен и окно оплаты уже закрыто; в остальных случаях
// вызов ничего не меняет. Возвращает true, если подписка была деактивирована.
func (s *SubscriptionService) Cancel(ctx context.Context, subscriptionID int64, now time.Time) (bool, error) {
	const op = "subscription.Cancel"

	lapsed := false
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.repo.SubscriptionForUpdate(ctx, subscriptionID)
		if err != nil {
			return err
		}
		if !sub.Active {
			return nil
		}
		period := s.period(sub)
		if paidWithin(sub.Payments, period) || !now.After(period.WindowEnd) {
			return nil
		}
		if err := s.repo.DeactivateSubscription(ctx, sub.ID); err != nil {
			return err
		}
		lapsed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if lapsed {
		metrics.SubscriptionsLapsed.Inc()
		s.log.Info("subscription lapsed", slog.Int64("subscription_id", subscriptionID))
		events.Emit(ctx, s.events, s.log, events.New(events.SubscriptionLapsed, now, map[string]any{
			"subscription_id": subscriptionID,
		}))
	}
	return lapsed, nil
}

// NextRenewalDate возвращает дату очередного платежа: start + paymentCount*period месяцев.
func (s *SubscriptionService) NextRenewalDate(ctx context.Context, subscriptionID int64) (time.Time, error) {
	sub, err := s.repo.Subscription(ctx, subscriptionID)
	if err != nil {
		return time.Time{}, fmt.Errorf("subscription.NextRenewalDate: %w", err)
	}
	return month.AddMonths(sub.StartDate, len(sub.Payments)*sub.RenewalPeriod.Months()), nil
}

// CurrentPeriod возвращает границы текущего периода и окна оплаты.
func (s *SubscriptionService) CurrentPeriod(ctx context.Context, subscriptionID int64) (month.Period, error) {
	sub, err := s.repo.Subscription(ctx, subscriptionID)
	if err != nil {
		return month.Period{}, fmt.Errorf("subscription.CurrentPeriod: %w", err)
	}
	return s.period(sub), nil
}

// Get возвращает подписку по ID.
func (s *SubscriptionService) Get(ctx context.Context, subscriptionID int64) (*models.Subscription, error) {
	sub, err := s.repo.Subscription(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("subscription.Get: %w", err)
	}
	return sub, nil
}

// ListForClient возвращает подписки клиента.
func (s *SubscriptionService) ListForClient(ctx context.Context, clientID int64) ([]models.Subscription, error) {
	const op = "subscription.ListForClient"
	exists, err := s.repo.ClientExists(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, apperr.NotFound("client", clientID))
	}
	subs, err := s.repo.SubscriptionsByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// SweepLapsed прогоняет проверку просрочки по всем активным подпискам
// и возвращает число деактивированных. Ошибка по одной подписке
// не останавливает проход.
func (s *SubscriptionService) SweepLapsed(ctx context.Context, now time.Time) (int, error) {
	const op = "subscription.SweepLapsed"

	ids, err := s.repo.ActiveSubscriptionIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var (
		lapsed int
		errs   []error
	)
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return lapsed, fmt.Errorf("%s: %w", op, ctx.Err())
		default:
		}
		ok, err := s.Cancel(ctx, id, now)
		if err != nil {
			s.log.Error("lapse check failed", slog.Int64("subscription_id", id), sl.Err(err))
			errs = append(errs, err)
			continue
		}
		if ok {
			lapsed++
		}
	}
	if len(errs) > 0 {
		return lapsed, fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}
	return lapsed, nil
}

// CurrentRevenue возвращает сумму всех платежей по активным подпискам.
func (s *SubscriptionService) CurrentRevenue(ctx context.Context) (decimal.Decimal, error) {
	total, err := s.repo.SumActiveSubscriptionPayments(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("subscription.CurrentRevenue: %w", err)
	}
	return total, nil
}

// PredictedRevenue возвращает уже полученную выручку по активным подпискам
// плюс цену следующего периода каждой из них со скидкой лояльности на момент now.
func (s *SubscriptionService) PredictedRevenue(ctx context.Context, now time.Time) (decimal.Decimal, error) {
	const op = "subscription.PredictedRevenue"

	total, err := s.repo.SumActiveSubscriptionPayments(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	subs, err := s.repo.ActiveSubscriptions(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	if len(subs) == 0 {
		return total, nil
	}
	loyalty, err := s.discounts.ResolveLoyaltyPercent(ctx, now)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	for _, sub := range subs {
		total = total.Add(pricing.SubscriptionPrice(sub.Price, loyalty))
	}
	return total, nil
}

func (s *SubscriptionService) period(sub *models.Subscription) month.Period {
	return month.Current(sub.StartDate, sub.RenewalPeriod.Months(), len(sub.Payments), s.graceDays)
}

// paidWithin сообщает, есть ли платёж, попадающий в [NextDue, End) периода.
func paidWithin(payments []models.SubscriptionPayment, period month.Period) bool {
	for _, p := range payments {
		if period.Covers(p.PaidAt) {
			return true
		}
	}
	return false
}
