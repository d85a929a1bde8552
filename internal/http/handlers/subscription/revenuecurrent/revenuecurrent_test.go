package revenuecurrent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CurrentRevenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func TestRevenueCurrentHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный подсчет",
			setupMock: func(m *MockService) {
				m.On("CurrentRevenue", mock.Anything).Return(decimal.NewFromInt(300), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"current":"300"`,
		},
		{
			name: "ошибка хранилища",
			setupMock: func(m *MockService) {
				m.On("CurrentRevenue", mock.Anything).Return(decimal.Zero, errors.New("timeout"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not compute revenue`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/subscriptions/revenue/current", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
