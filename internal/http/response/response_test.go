package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
)

func TestStatusOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := StatusOKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, data, resp.Data)
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: apperr.NotFound("contract", 1), want: http.StatusNotFound},
		{name: "invalid input", err: apperr.New(apperr.ErrInvalidTerm, "x"), want: http.StatusBadRequest},
		{name: "conflict", err: apperr.New(apperr.ErrDuplicateSub, "x"), want: http.StatusConflict},
		{name: "invalid state", err: apperr.New(apperr.ErrExpired, "x"), want: http.StatusConflict},
		{name: "business rule", err: apperr.New(apperr.ErrOverpayment, "x"), want: http.StatusUnprocessableEntity},
		{name: "external", err: apperr.New(apperr.ErrConversionFailed, "x"), want: http.StatusBadGateway},
		{name: "wrapped", err: fmt.Errorf("op: %w", apperr.New(apperr.ErrPriceMismatch, "x")), want: http.StatusUnprocessableEntity},
		{name: "unknown", err: errors.New("db down"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestFromError(t *testing.T) {
	resp := FromError(fmt.Errorf("op: %w", apperr.New(apperr.ErrOverpayment, "too much")), "fallback")
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "too much", resp.Error)
	assert.Equal(t, "Overpayment", resp.Reason)

	resp = FromError(errors.New("pq: connection refused"), "could not save")
	assert.Equal(t, "could not save", resp.Error)
	assert.Empty(t, resp.Reason)
}

func TestRenderError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	RenderError(w, r, apperr.NotFound("client", 7), "fallback")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":"Error","error":"client 7 not found","reason":"NotFound"}`, w.Body.String())
}

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Name  string `validate:"required"`
		Pesel string `validate:"len=11,numeric"`
	}

	v := validator.New()
	err := v.Struct(TestStruct{Pesel: "abc"})
	assert.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Name is a required field")
	assert.Contains(t, resp.Error, "field Pesel must be 11 characters long")
}
