// Package currency получает средние курсы валют из публичного API
// (формат таблицы A Национального банка Польши).
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Client запрашивает курсы валют по HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент сервиса курсов с таймаутом на запрос.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// Rate возвращает средний курс валюты code к базовой валюте сервиса.
func (c *Client) Rate(ctx context.Context, code string) (decimal.Decimal, error) {
	const op = "currency.Rate"

	code = strings.ToUpper(strings.TrimSpace(code))
	if !codePattern.MatchString(code) {
		return decimal.Zero, fmt.Errorf("%s: invalid currency code %q", op, code)
	}

	req, err := c.newRequest(ctx, "/exchangerates/rates/A/"+url.PathEscape(code)+"/?format=json")
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var table rateTable
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return decimal.Zero, fmt.Errorf("%s: decode response: %w", op, err)
	}
	if len(table.Rates) == 0 {
		return decimal.Zero, fmt.Errorf("%s: no rates for %s", op, code)
	}
	return table.Rates[0].Mid, nil
}
