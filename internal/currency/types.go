package currency

import "github.com/shopspring/decimal"

// rateTable — ответ сервиса курсов для одной валюты (таблица A).
type rateTable struct {
	Table    string `json:"table"`
	Currency string `json:"currency"`
	Code     string `json:"code"`
	Rates    []rate `json:"rates"`
}

type rate struct {
	No            string          `json:"no"`
	EffectiveDate string          `json:"effectiveDate"`
	Mid           decimal.Decimal `json:"mid"`
}
