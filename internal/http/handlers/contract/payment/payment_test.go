package payment

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) AddPayment(ctx context.Context, contractID int64, amount decimal.Decimal, now time.Time) (*models.Contract, error) {
	args := m.Called(ctx, contractID, amount.String(), now)
	if res := args.Get(0); res != nil {
		return res.(*models.Contract), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPaymentHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		id             string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "платеж подписывает договор",
			id:   "5",
			body: `{"amount":"600"}`,
			setupMock: func(m *MockService) {
				m.On("AddPayment", mock.Anything, int64(5), "600", now).Return(&models.Contract{
					ID:     5,
					Price:  decimal.NewFromInt(1200),
					Signed: true,
					Payments: []models.Payment{
						{Amount: decimal.NewFromInt(600)},
						{Amount: decimal.NewFromInt(600)},
					},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"signed":true`,
		},
		{
			name:           "некорректный id",
			id:             "abc",
			body:           `{"amount":"600"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode id from url`,
		},
		{
			name:           "некорректное тело",
			id:             "5",
			body:           `{"amount":"six hundred"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
		{
			name: "переплата",
			id:   "5",
			body: `{"amount":"1200.01"}`,
			setupMock: func(m *MockService) {
				m.On("AddPayment", mock.Anything, int64(5), "1200.01", now).Return(nil, apperr.ErrOverpayment)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"reason":"Overpayment"`,
		},
		{
			name: "договор истек",
			id:   "5",
			body: `{"amount":"100"}`,
			setupMock: func(m *MockService) {
				m.On("AddPayment", mock.Anything, int64(5), "100", now).Return(nil, apperr.ErrExpired)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"reason":"Expired"`,
		},
		{
			name: "договор не найден",
			id:   "99",
			body: `{"amount":"100"}`,
			setupMock: func(m *MockService) {
				m.On("AddPayment", mock.Anything, int64(99), "100", now).Return(nil, apperr.NotFound("contract", 99))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `contract 99 not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)
			handler.now = func() time.Time { return now }

			req := httptest.NewRequest(http.MethodPost, "/contracts/"+tt.id+"/payments", bytes.NewBufferString(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
