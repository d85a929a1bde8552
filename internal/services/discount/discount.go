// Package discount выбирает применимую скидку на момент принятия решения.
package discount

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// Repository определяет чтение скидок из хранилища.
type Repository interface {
	// ListDiscounts возвращает все скидки категории независимо от окна действия.
	ListDiscounts(ctx context.Context, category models.DiscountCategory) ([]models.Discount, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Resolver находит лучшую скидку категории. Список скидок категории
// кэшируется целиком, а фильтрация по моменту и продукту выполняется в памяти,
// поэтому результат зависит только от переданного момента.
type Resolver struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewResolver создаёт новый Resolver.
func NewResolver(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Resolver {
	return &Resolver{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func cacheKey(category models.DiscountCategory) string {
	return fmt.Sprintf("discounts:%s", category)
}

// ResolveBest возвращает скидку категории с наибольшим процентом, действующую
// в момент at и подходящую для продукта productID (nil — без фильтра по продукту).
// При равных процентах выигрывает скидка с меньшим ID. Если подходящей скидки нет,
// возвращает nil.
func (r *Resolver) ResolveBest(ctx context.Context, category models.DiscountCategory, productID *int64, at time.Time) (*models.Discount, error) {
	all, err := r.load(ctx, category)
	if err != nil {
		return nil, err
	}
	return Best(all, category, productID, at), nil
}

// ResolveLoyaltyPercent возвращает процент скидки лояльности, действующей в момент at,
// или ноль, если такой нет.
func (r *Resolver) ResolveLoyaltyPercent(ctx context.Context, at time.Time) (decimal.Decimal, error) {
	best, err := r.ResolveBest(ctx, models.DiscountLoyalty, nil, at)
	if err != nil {
		return decimal.Zero, err
	}
	if best == nil {
		return decimal.Zero, nil
	}
	return best.Percentage, nil
}

// Invalidate сбрасывает кэш скидок категории.
func (r *Resolver) Invalidate(category models.DiscountCategory) {
	if err := r.cache.Invalidate(cacheKey(category)); err != nil {
		r.log.Warn("failed to invalidate discounts cache", slog.String("category", string(category)), sl.Err(err))
	}
}

func (r *Resolver) load(ctx context.Context, category models.DiscountCategory) ([]models.Discount, error) {
	key := cacheKey(category)
	var cached []models.Discount
	found, err := r.cache.Get(key, &cached)
	if err != nil {
		r.log.Warn("failed to read discounts from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	list, err := r.repo.ListDiscounts(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("discount.load: %w", err)
	}
	if err := r.cache.Set(key, list, r.ttl); err != nil {
		r.log.Warn("failed to cache discounts", slog.String("key", key), sl.Err(err))
	}
	return list, nil
}

// Best выбирает лучшую скидку из списка по тем же правилам, что и ResolveBest.
func Best(list []models.Discount, category models.DiscountCategory, productID *int64, at time.Time) *models.Discount {
	candidates := make([]models.Discount, 0, len(list))
	for _, d := range list {
		if d.Category == category && d.ValidAt(at) && d.AppliesTo(productID) {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if cmp := candidates[i].Percentage.Cmp(candidates[j].Percentage); cmp != 0 {
			return cmp > 0
		}
		return candidates[i].ID < candidates[j].ID
	})
	best := candidates[0]
	return &best
}
