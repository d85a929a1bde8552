package create

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, req models.ContractRequest, now time.Time) (*models.Contract, error) {
	args := m.Called(ctx, req, now)
	if res := args.Get(0); res != nil {
		return res.(*models.Contract), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	validBody := `{"client_id":1,"product_version_id":2,"start_date":"2025-03-01T00:00:00Z","end_date":"2025-03-11T00:00:00Z","support_years":1}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "договор создан",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.AnythingOfType("models.ContractRequest"), now).
					Return(&models.Contract{ID: 7, Price: decimal.RequireFromString("2550")}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":7`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"client_id":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
		{
			name:           "не передан клиент",
			body:           `{"product_version_id":2,"start_date":"2025-03-01T00:00:00Z","end_date":"2025-03-11T00:00:00Z"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field ClientID is a required field`,
		},
		{
			name:           "слишком много лет поддержки",
			body:           `{"client_id":1,"product_version_id":2,"start_date":"2025-03-01T00:00:00Z","end_date":"2025-03-11T00:00:00Z","support_years":4}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field SupportYears is out of range`,
		},
		{
			name: "клиент уже связан обязательством",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything, now).Return(nil, apperr.ErrAlreadyCommitted)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"reason":"AlreadyCommitted"`,
		},
		{
			name: "недопустимый срок",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything, now).Return(nil, apperr.ErrInvalidTerm)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"reason":"InvalidTerm"`,
		},
		{
			name: "внутренняя ошибка",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything, now).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not create contract`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)
			handler.now = func() time.Time { return now }

			req := httptest.NewRequest(http.MethodPost, "/contracts", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
