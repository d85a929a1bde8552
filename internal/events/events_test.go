package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, e Event) error {
	return m.Called(ctx, e).Error(0)
}

func TestNew(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	e := New(ContractSigned, at, map[string]int64{"contract_id": 1})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, ContractSigned, e.Type)
	assert.Equal(t, at, e.OccurredAt)
	assert.NotEqual(t, e.ID, New(ContractSigned, at, nil).ID)
}

func TestEmit_SwallowsPublishError(t *testing.T) {
	p := new(PublisherMock)
	p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.NotPanics(t, func() {
		Emit(context.Background(), p, log, New(SubscriptionLapsed, time.Now(), nil))
	})
	p.AssertExpectations(t)
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Publish(context.Background(), Event{}))
}

func TestEvent_Message(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	e := New(SubscriptionRenewed, at, map[string]int64{"subscription_id": 5})

	msg := e.message()
	assert.Equal(t, e.ID, msg.ID)
	assert.Equal(t, SubscriptionRenewed, msg.RoutingKey)
	assert.Equal(t, at, msg.Timestamp)
	assert.Equal(t, e, msg.Body)
}
