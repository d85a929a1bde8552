package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueFilter — параметры выборки фактической выручки.
// ProductID == nil означает выручку по всем продуктам.
type RevenueFilter struct {
	From      time.Time // Начало окна (включительно)
	To        time.Time // Конец окна (не включительно)
	ProductID *int64
}

// Conversion — результат пересчёта суммы в другую валюту.
type Conversion struct {
	Amount    decimal.Decimal `json:"amount"`
	Base      string          `json:"base_currency"`
	Currency  string          `json:"currency"`
	Rate      decimal.Decimal `json:"rate"`
	Converted decimal.Decimal `json:"converted"`
}
