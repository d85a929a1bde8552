package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Границы периода продления в месяцах.
const (
	MinRenewalMonths = 1
	MaxRenewalMonths = 24
)

// RenewalPeriod — период продления подписки в месяцах.
type RenewalPeriod int

var namedPeriods = map[string]RenewalPeriod{
	"monthly":    1,
	"quarterly":  3,
	"halfyearly": 6,
	"yearly":     12,
	"twoyears":   24,
}

// ParseRenewalPeriod разбирает период из числа месяцев или из имени
// (Monthly, Quarterly, HalfYearly, Yearly, TwoYears) без учёта регистра.
func ParseRenewalPeriod(s string) (RenewalPeriod, error) {
	s = strings.TrimSpace(s)
	if p, ok := namedPeriods[strings.ToLower(s)]; ok {
		return p, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown renewal period %q", s)
	}
	return RenewalPeriod(n), nil
}

// Valid сообщает, лежит ли период в границах [1, 24] месяцев.
func (p RenewalPeriod) Valid() bool {
	return p >= MinRenewalMonths && p <= MaxRenewalMonths
}

// Months возвращает длину периода в месяцах.
func (p RenewalPeriod) Months() int { return int(p) }

func (p RenewalPeriod) String() string {
	for name, v := range namedPeriods {
		if v == p {
			return name
		}
	}
	return strconv.Itoa(int(p))
}

// Subscription — подписка клиента на продукт (не на конкретную версию).
// Price — цена из прайса до скидок; скидки фиксируются в Discounts.
type Subscription struct {
	ID            int64                 `json:"id"`
	ClientID      int64                 `json:"client_id"`
	ProductID     int64                 `json:"product_id"`
	StartDate     time.Time             `json:"start_date"`
	RenewalPeriod RenewalPeriod         `json:"renewal_period"`
	Price         decimal.Decimal       `json:"price"`
	Active        bool                  `json:"active"`
	Discounts     []AppliedDiscount     `json:"discounts,omitempty"`
	Payments      []SubscriptionPayment `json:"payments,omitempty"`
}

// ActiveAt сообщает, действует ли подписка в момент at.
func (s Subscription) ActiveAt(at time.Time) bool {
	return s.Active && !s.StartDate.After(at)
}

// SubscriptionPayment — платёж за один период подписки.
type SubscriptionPayment struct {
	ID             int64           `json:"id"`
	SubscriptionID int64           `json:"subscription_id"`
	Amount         decimal.Decimal `json:"amount"`
	PaidAt         time.Time       `json:"paid_at"`
}

// SubscriptionRequest используется для приёма данных подписки из JSON-запроса.
// Период приходит строкой, чтобы его можно было разобрать вручную.
type SubscriptionRequest struct {
	ClientID      int64           `json:"client_id" validate:"required,gt=0"`
	ProductID     int64           `json:"product_id" validate:"required,gt=0"`
	RenewalPeriod string          `json:"renewal_period" validate:"required"`
	Price         decimal.Decimal `json:"price"`
}

// SubscriptionResponse — проекция подписки, возвращаемая клиентам API.
type SubscriptionResponse struct {
	ID            int64           `json:"id"`
	Active        bool            `json:"active"`
	StartDate     time.Time       `json:"start_date"`
	RenewalPeriod int             `json:"renewal_period_months"`
	Price         decimal.Decimal `json:"price"`
}

// Response строит проекцию подписки.
func (s Subscription) Response() SubscriptionResponse {
	return SubscriptionResponse{
		ID:            s.ID,
		Active:        s.Active,
		StartDate:     s.StartDate,
		RenewalPeriod: s.RenewalPeriod.Months(),
		Price:         s.Price,
	}
}
