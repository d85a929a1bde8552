// Package request разбирает параметры HTTP-запросов: идентификаторы из пути,
// даты и необязательные фильтры из строки запроса.
package request

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
)

// DateLayout — формат даты без времени, который принимается наравне с RFC 3339.
const DateLayout = "2006-01-02"

// ID читает положительный идентификатор из параметра пути name.
func ID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// OptionalID читает необязательный положительный идентификатор из строки запроса.
func OptionalID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &id, nil
}

// Time разбирает момент в формате RFC 3339 или дату 2006-01-02 (полночь UTC).
func Time(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use RFC 3339 or %s", raw, DateLayout)
	}
	return t, nil
}
