// Package revenue считает фактическую и прогнозируемую выручку и пересчитывает
// суммы в другие валюты.
package revenue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/metrics"
	"github.com/magabrotheeeer/software-billing/internal/models"
	"github.com/magabrotheeeer/software-billing/internal/services/pricing"
)

// RevenueRepository определяет выборки из хранилища для расчёта выручки.
// Данные мягко удалённых клиентов в выборки не попадают.
type RevenueRepository interface {
	// SumContractPayments суммирует платежи по договорам в окне фильтра.
	SumContractPayments(ctx context.Context, filter models.RevenueFilter) (decimal.Decimal, error)
	// SumSubscriptionPayments суммирует платежи по подпискам в окне фильтра.
	SumSubscriptionPayments(ctx context.Context, filter models.RevenueFilter) (decimal.Decimal, error)
	// OpenContracts возвращает неподписанные договоры, срок которых включает at, вместе с платежами.
	OpenContracts(ctx context.Context, productID *int64, at time.Time) ([]models.Contract, error)
	// ActiveSubscriptions возвращает активные подписки.
	ActiveSubscriptions(ctx context.Context, productID *int64) ([]models.Subscription, error)
}

// LoyaltyResolver возвращает текущий процент лояльности.
type LoyaltyResolver interface {
	ResolveLoyaltyPercent(ctx context.Context, at time.Time) (decimal.Decimal, error)
}

// RateProvider возвращает средний курс валюты к базовой.
type RateProvider interface {
	Rate(ctx context.Context, currency string) (decimal.Decimal, error)
}

// RevenueService реализует агрегаты выручки.
type RevenueService struct {
	repo         RevenueRepository
	loyalty      LoyaltyResolver
	rates        RateProvider
	baseCurrency string
	log          *slog.Logger
}

// NewRevenueService создает новый экземпляр RevenueService.
func NewRevenueService(repo RevenueRepository, loyalty LoyaltyResolver, rates RateProvider,
	baseCurrency string, log *slog.Logger) *RevenueService {
	return &RevenueService{
		repo:         repo,
		loyalty:      loyalty,
		rates:        rates,
		baseCurrency: strings.ToUpper(baseCurrency),
		log:          log,
	}
}

// Actual возвращает сумму платежей по договорам и подпискам в окне [From, To).
func (s *RevenueService) Actual(ctx context.Context, filter models.RevenueFilter) (decimal.Decimal, error) {
	const op = "revenue.Actual"

	if !filter.From.Before(filter.To) {
		return decimal.Zero, fmt.Errorf("%s: %w", op,
			apperr.New(apperr.ErrInvalidRange, "from must be before to"))
	}

	contracts, err := s.repo.SumContractPayments(ctx, filter)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	subscriptions, err := s.repo.SumSubscriptionPayments(ctx, filter)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return contracts.Add(subscriptions), nil
}

// Predicted возвращает снимок ожидаемой выручки на момент now: полную цену
// неподписанных договоров в пределах срока и цену следующего периода
// активных подписок с текущей скидкой лояльности.
func (s *RevenueService) Predicted(ctx context.Context, productID *int64, now time.Time) (decimal.Decimal, error) {
	const op = "revenue.Predicted"

	contracts, err := s.repo.OpenContracts(ctx, productID, now)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	total := decimal.Zero
	for _, c := range contracts {
		total = total.Add(c.Price)
	}

	subscriptions, err := s.repo.ActiveSubscriptions(ctx, productID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	if len(subscriptions) == 0 {
		return total, nil
	}
	loyalty, err := s.loyalty.ResolveLoyaltyPercent(ctx, now)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	for _, sub := range subscriptions {
		total = total.Add(pricing.SubscriptionPrice(sub.Price, loyalty))
	}
	return total, nil
}

// Convert пересчитывает сумму из базовой валюты в currency по среднему курсу.
// Для базовой валюты курс равен 1 и внешний сервис не вызывается.
func (s *RevenueService) Convert(ctx context.Context, amount decimal.Decimal, currency string) (*models.Conversion, error) {
	const op = "revenue.Convert"

	code := strings.ToUpper(strings.TrimSpace(currency))
	result := &models.Conversion{
		Amount:   amount,
		Base:     s.baseCurrency,
		Currency: code,
	}
	if code == s.baseCurrency {
		result.Rate = decimal.NewFromInt(1)
		result.Converted = amount
		return result, nil
	}

	rate, err := s.rates.Rate(ctx, code)
	if err == nil && !rate.IsPositive() {
		err = fmt.Errorf("non-positive rate %s", rate)
	}
	if err != nil {
		metrics.ConversionFailures.Inc()
		s.log.Error("failed to get exchange rate", slog.String("currency", code), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Wrap(apperr.ErrConversionFailed, err, "rate for %s unavailable", code))
	}

	result.Rate = rate
	result.Converted = amount.Div(rate).Round(2)
	return result, nil
}
