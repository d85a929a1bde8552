// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель — единообразно формировать структурированные поля лога
// для ошибок и денежных сумм.
package sl

import (
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to add payment", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Money возвращает slog.Attr с суммой в виде строки с двумя знаками после запятой.
func Money(key string, amount decimal.Decimal) slog.Attr {
	return slog.String(key, amount.StringFixed(2))
}

// New создаёт текстовый логгер: для окружений local и dev с уровнем Debug, для остальных Info.
func New(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "local" || env == "dev" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
