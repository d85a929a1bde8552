package discountlist

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListDiscounts(ctx context.Context, category models.DiscountCategory) ([]models.Discount, error) {
	args := m.Called(ctx, category)
	if res := args.Get(0); res != nil {
		return res.([]models.Discount), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestDiscountListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Run("скидки лояльности", func(t *testing.T) {
		m := new(MockService)
		m.On("ListDiscounts", mock.Anything, models.DiscountLoyalty).
			Return([]models.Discount{{ID: 1, Name: "Loyal", Category: models.DiscountLoyalty}}, nil)

		w := httptest.NewRecorder()
		New(logger, m).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/discounts?category=loyalty", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Loyal"`)
		m.AssertExpectations(t)
	})

	t.Run("неизвестная категория", func(t *testing.T) {
		m := new(MockService)
		m.On("ListDiscounts", mock.Anything, models.DiscountCategory("seasonal")).
			Return(nil, apperr.New(apperr.ErrInvalidDiscount, "unknown category %q", "seasonal"))

		w := httptest.NewRecorder()
		New(logger, m).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/discounts?category=seasonal", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"reason":"InvalidDiscount"`)
		m.AssertExpectations(t)
	})
}
