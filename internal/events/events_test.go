package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct {
	calls int
	err   error
}

func (p *failingPublisher) Publish(context.Context, string, []byte) error {
	p.calls++
	return p.err
}

func (p *failingPublisher) Close() error { return nil }

func TestEncode(t *testing.T) {
	at := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	payload, err := Encode(MembershipPurchased, at, map[string]string{"clientId": "c1"})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(payload, &env))
	assert.Equal(t, MembershipPurchased, env.Type)
	assert.True(t, at.Equal(env.OccurredAt))
	assert.JSONEq(t, `{"clientId":"c1"}`, string(env.Data))
	assert.NotEmpty(t, env.ID)
}

func TestBreakerPublisher_OpensAfterConsecutiveFailures(t *testing.T) {
	next := &failingPublisher{err: errors.New("broker down")}
	cfg := DefaultBreakerConfig()
	cfg.FailureThreshold = 3
	p := NewBreakerPublisher(next, cfg, nil)

	for i := 0; i < 3; i++ {
		assert.Error(t, p.Publish(context.Background(), MembershipPurchased, []byte("{}")))
	}
	assert.Equal(t, gobreaker.StateOpen, p.State())

	err := p.Publish(context.Background(), MembershipPurchased, []byte("{}"))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, next.calls)
}

func TestBreakerPublisher_PassesThrough(t *testing.T) {
	next := &failingPublisher{}
	p := NewBreakerPublisher(next, DefaultBreakerConfig(), nil)

	require.NoError(t, p.Publish(context.Background(), MembershipSessionDeducted, []byte("{}")))
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, gobreaker.StateClosed, p.State())
	assert.NoError(t, p.Close())
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(nil)
	assert.NoError(t, p.Publish(context.Background(), MembershipBalanceAdjusted, []byte(`{"a":1}`)))
	assert.NoError(t, p.Close())
}

func TestRabbitMQPublisher(t *testing.T) {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		t.Skip("RABBITMQ_URL not set")
	}
	p, err := NewRabbitMQPublisher(url, nil)
	if err != nil {
		t.Skipf("RabbitMQ not reachable: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	payload, err := Encode(MembershipPurchased, time.Now(), map[string]string{"test": "true"})
	require.NoError(t, err)
	assert.NoError(t, p.Publish(ctx, MembershipPurchased, payload))
}
