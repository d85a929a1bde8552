package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishing(t *testing.T) {
	at := time.Date(2025, 2, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{
			name: "envelope properties",
			msg: Message{
				ID:         "evt-1",
				RoutingKey: "contract.signed",
				Timestamp:  at,
				Body:       map[string]int64{"contract_id": 12},
			},
		},
		{
			name:    "body cannot be marshalled",
			msg:     Message{RoutingKey: "contract.signed", Body: make(chan int)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := publishing(tt.msg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "application/json", p.ContentType)
			assert.Equal(t, amqp.Persistent, p.DeliveryMode)
			assert.Equal(t, tt.msg.ID, p.MessageId)
			assert.Equal(t, tt.msg.RoutingKey, p.Type)
			assert.True(t, p.Timestamp.Equal(at))
			assert.Equal(t, time.UTC, p.Timestamp.Location())

			var body map[string]int64
			require.NoError(t, json.Unmarshal(p.Body, &body))
			assert.Equal(t, int64(12), body["contract_id"])
		})
	}
}
