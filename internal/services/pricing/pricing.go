// Package pricing считает цены договоров и подписок с учётом скидок.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/software-billing/internal/models"
)

// SupportYearPrice — стоимость одного года поддержки.
var SupportYearPrice = decimal.NewFromInt(1000)

// MaxSupportYears — максимальный срок поддержки в годах.
const MaxSupportYears = 3

var hundred = decimal.NewFromInt(100)

// CombinePercent складывает процент категории и процент лояльности.
// Результат ограничен диапазоном [0, 100], так что цена не бывает отрицательной.
func CombinePercent(category, loyalty decimal.Decimal) decimal.Decimal {
	return clamp(category.Add(loyalty))
}

// ApplyPercent уменьшает сумму на percent процентов.
func ApplyPercent(amount, percent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(clamp(percent).Div(hundred))
	return amount.Mul(factor).Round(2)
}

// ContractPrice = (basePrice + supportYears*1000) * (1 - percent/100).
func ContractPrice(basePrice decimal.Decimal, supportYears int, percent decimal.Decimal) decimal.Decimal {
	support := SupportYearPrice.Mul(decimal.NewFromInt(int64(supportYears)))
	return ApplyPercent(basePrice.Add(support), percent)
}

// SubscriptionPrice = listedPrice * (1 - percent/100).
func SubscriptionPrice(listedPrice, percent decimal.Decimal) decimal.Decimal {
	return ApplyPercent(listedPrice, percent)
}

func clamp(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// IsLoyal сообщает, является ли клиент постоянным: у него есть хотя бы один
// подписанный договор или хотя бы одна подписка, активная или нет.
func IsLoyal(contracts []models.Contract, subscriptions []models.Subscription) bool {
	if len(subscriptions) > 0 {
		return true
	}
	for _, c := range contracts {
		if c.Signed {
			return true
		}
	}
	return false
}
