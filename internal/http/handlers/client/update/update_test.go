package update

import (
	"bytes"
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

func (m *MockService) Update(ctx context.Context, id int64, req models.ClientRequest) (*models.Client, error) {
	args := m.Called(ctx, id, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	body := `{"contact":{"email":"new@example.com","phone":"1","address":"Krakow"},"company":{"company_name":"Acme 2","krs":"0000123456"}}`

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "контакты изменены",
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, int64(2), mock.Anything).Return(&models.Client{
					ID:      2,
					Kind:    models.ClientCompany,
					Contact: models.Contact{Email: "new@example.com"},
					Company: &models.Company{Name: "Acme 2", Krs: "0000123456"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"company_name":"Acme 2"`,
		},
		{
			name: "смена KRS",
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, int64(2), mock.Anything).Return(nil, apperr.ErrImmutableIdentity)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"reason":"ImmutableIdentity"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPut, "/clients/2", bytes.NewBufferString(body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "2")
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
