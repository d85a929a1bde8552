package listforclient

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListForClient(ctx context.Context, clientID int64) ([]models.Subscription, error) {
	args := m.Called(ctx, clientID)
	if res := args.Get(0); res != nil {
		return res.([]models.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListForClientHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "пустой список",
			id:   "1",
			setupMock: func(m *MockService) {
				m.On("ListForClient", mock.Anything, int64(1)).Return([]models.Subscription{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"subscriptions":[]`,
		},
		{
			name: "клиент не найден",
			id:   "2",
			setupMock: func(m *MockService) {
				m.On("ListForClient", mock.Anything, int64(2)).Return(nil, apperr.NotFound("client", 2))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `client 2 not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/clients/"+tt.id+"/subscriptions", nil)
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
