package models

import "github.com/shopspring/decimal"

// Product — программный продукт из каталога.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category" validate:"required"`
}

// ProductVersion — версия продукта с годовой базовой ценой.
type ProductVersion struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	Version     string          `json:"version" validate:"required"`
	YearlyPrice decimal.Decimal `json:"yearly_price"`
}
