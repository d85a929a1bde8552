package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountCategory — к чему применяется скидка.
type DiscountCategory string

const (
	// DiscountUpfront — скидка на договор с разовой оплатой.
	DiscountUpfront DiscountCategory = "upfront"
	// DiscountSubscription — скидка на подписку.
	DiscountSubscription DiscountCategory = "subscription"
	// DiscountLoyalty — надбавка для постоянных клиентов, к договорам не привязывается.
	DiscountLoyalty DiscountCategory = "loyalty"
)

// Valid сообщает, известна ли категория.
func (c DiscountCategory) Valid() bool {
	switch c {
	case DiscountUpfront, DiscountSubscription, DiscountLoyalty:
		return true
	}
	return false
}

// Discount — скидка с окном действия [StartDate, EndDate] включительно.
// ProductID == nil означает скидку на любой продукт.
type Discount struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name" validate:"required"`
	Category   DiscountCategory `json:"category" validate:"required"`
	ProductID  *int64           `json:"product_id,omitempty"`
	Percentage decimal.Decimal  `json:"percentage"`
	StartDate  time.Time        `json:"start_date" validate:"required"`
	EndDate    time.Time        `json:"end_date" validate:"required"`
}

// ValidAt сообщает, действует ли скидка в момент at (границы включительно).
func (d Discount) ValidAt(at time.Time) bool {
	return !at.Before(d.StartDate) && !at.After(d.EndDate)
}

// AppliesTo сообщает, подходит ли скидка для продукта. Скидка без продукта подходит всем,
// а запрос без продукта принимает только такие скидки.
func (d Discount) AppliesTo(productID *int64) bool {
	if d.ProductID == nil {
		return true
	}
	return productID != nil && *d.ProductID == *productID
}

// AppliedDiscount — неизменяемый снимок скидки на момент принятия решения.
// Сохраняется вместе с договором или подпиской и не зависит от последующих
// изменений исходной записи скидки.
type AppliedDiscount struct {
	DiscountID int64            `json:"discount_id"`
	Name       string           `json:"name"`
	Category   DiscountCategory `json:"category"`
	Percentage decimal.Decimal  `json:"percentage"`
	AppliedAt  time.Time        `json:"applied_at"`
}

// Snapshot фиксирует скидку на момент at.
func (d Discount) Snapshot(at time.Time) AppliedDiscount {
	return AppliedDiscount{
		DiscountID: d.ID,
		Name:       d.Name,
		Category:   d.Category,
		Percentage: d.Percentage,
		AppliedAt:  at,
	}
}
