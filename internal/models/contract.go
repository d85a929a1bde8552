package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract — договор с фиксированным сроком на версию продукта.
// Создаётся неподписанным и становится подписанным, когда сумма платежей
// в точности равна цене. Обратного перехода нет.
type Contract struct {
	ID               int64             `json:"id"`
	ClientID         int64             `json:"client_id"`
	ProductVersionID int64             `json:"product_version_id"`
	ProductID        int64             `json:"product_id"`
	StartDate        time.Time         `json:"start_date"`
	EndDate          time.Time         `json:"end_date"`
	Price            decimal.Decimal   `json:"price"`
	SupportYears     int               `json:"support_years"`
	Signed           bool              `json:"signed"`
	Discounts        []AppliedDiscount `json:"discounts,omitempty"`
	Payments         []Payment         `json:"payments,omitempty"`
}

// Paid возвращает сумму всех платежей по договору.
func (c Contract) Paid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// ActiveAt сообщает, действует ли подписанный договор в момент at.
func (c Contract) ActiveAt(at time.Time) bool {
	return c.Signed && !at.Before(c.StartDate) && !at.After(c.EndDate)
}

// Payment — платёж по договору. Платежи только добавляются.
type Payment struct {
	ID         int64           `json:"id"`
	ContractID int64           `json:"contract_id"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     time.Time       `json:"paid_at"`
}

// ContractRequest используется для приёма данных договора из JSON-запроса.
type ContractRequest struct {
	ClientID         int64     `json:"client_id" validate:"required,gt=0"`
	ProductVersionID int64     `json:"product_version_id" validate:"required,gt=0"`
	StartDate        time.Time `json:"start_date" validate:"required"`
	EndDate          time.Time `json:"end_date" validate:"required"`
	SupportYears     int       `json:"support_years" validate:"gte=0,lte=3"`
}

// ContractResponse — проекция договора, возвращаемая клиентам API.
type ContractResponse struct {
	ID        int64           `json:"id"`
	Price     decimal.Decimal `json:"price"`
	Signed    bool            `json:"signed"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
}

// Response строит проекцию договора.
func (c Contract) Response() ContractResponse {
	return ContractResponse{
		ID:        c.ID,
		Price:     c.Price,
		Signed:    c.Signed,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
	}
}

// PaymentRequest — тело запроса на платёж по договору или продление подписки.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
