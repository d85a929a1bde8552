package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	err := New(ErrOverpayment, "paid %s of %s", "1300", "1200")
	wrapped := fmt.Errorf("contract.AddPayment: %w", err)

	assert.ErrorIs(t, wrapped, ErrOverpayment)
	assert.NotErrorIs(t, wrapped, ErrAlreadyPaid)
	assert.Equal(t, KindBusinessRule, KindOf(wrapped))
	assert.Equal(t, ReasonOverpayment, ReasonOf(wrapped))
}

func TestWrap_KeepsCause(t *testing.T) {
	err := Wrap(ErrNotFound, sql.ErrNoRows, "contract %d", 7)

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "contract 7")
}

func TestKindOf_Unknown(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, Reason(""), ReasonOf(errors.New("boom")))
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindNotFound, "NotFound"},
		{KindInvalidInput, "InvalidInput"},
		{KindConflict, "Conflict"},
		{KindInvalidState, "InvalidState"},
		{KindBusinessRule, "BusinessRuleViolation"},
		{KindExternal, "ExternalDependency"},
		{KindUnknown, "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}
