package discountcreate

import (
	"bytes"
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

func (m *MockService) CreateDiscount(ctx context.Context, d models.Discount) (*models.Discount, error) {
	args := m.Called(ctx, d.Name, d.Category)
	if res := args.Get(0); res != nil {
		return res.(*models.Discount), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestDiscountCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "скидка добавлена",
			body: `{"name":"Spring","category":"upfront","percentage":"10","start_date":"2025-03-01T00:00:00Z","end_date":"2025-03-31T00:00:00Z"}`,
			setupMock: func(m *MockService) {
				m.On("CreateDiscount", mock.Anything, "Spring", models.DiscountUpfront).
					Return(&models.Discount{ID: 4, Name: "Spring", Category: models.DiscountUpfront}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":4`,
		},
		{
			name: "процент вне диапазона",
			body: `{"name":"Huge","category":"upfront","percentage":"150","start_date":"2025-03-01T00:00:00Z","end_date":"2025-03-31T00:00:00Z"}`,
			setupMock: func(m *MockService) {
				m.On("CreateDiscount", mock.Anything, "Huge", models.DiscountUpfront).Return(nil, apperr.ErrInvalidDiscount)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"reason":"InvalidDiscount"`,
		},
		{
			name:           "нет окна действия",
			body:           `{"name":"Spring","category":"upfront","percentage":"10"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field StartDate is a required field`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/discounts", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
