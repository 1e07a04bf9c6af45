package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{15, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"other error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isConnectionError(tt.err))
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	t.Run("initial state is closed", func(t *testing.T) {
		assert.False(t, client.isCircuitOpen())
	})

	t.Run("record success resets state", func(t *testing.T) {
		atomic.StoreInt64(&client.failureCount, 3)
		atomic.StoreInt32(&client.state, StateOpen)

		client.recordSuccess()

		assert.False(t, client.isCircuitOpen())
		assert.Zero(t, atomic.LoadInt64(&client.failureCount))
	})

	t.Run("multiple failures open circuit", func(t *testing.T) {
		for i := 0; i < maxFailures; i++ {
			client.recordFailure()
		}
		assert.True(t, client.isCircuitOpen())
		assert.Equal(t, StateOpen, atomic.LoadInt32(&client.state))
	})

	t.Run("half-open after timeout", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now().Add(-openTimeout - time.Second)

		assert.False(t, client.isCircuitOpen())
		assert.Equal(t, StateHalfOpen, atomic.LoadInt32(&client.state))
	})

	t.Run("half-open failure reopens", func(t *testing.T) {
		atomic.StoreInt64(&client.failureCount, 0)
		atomic.StoreInt32(&client.state, StateHalfOpen)
		client.recordFailure()
		assert.Equal(t, StateOpen, atomic.LoadInt32(&client.state))
	})
}

func TestClient_PublishGuards(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}
	ev := NewTransactionEvent(123, OpSaved)

	t.Run("fails fast when circuit is open", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now()

		err := client.PublishTransactionEvent(context.Background(), ev)
		assert.ErrorIs(t, err, ErrCircuitOpen)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateClosed)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := client.PublishTransactionEvent(ctx, ev)
		assert.Equal(t, context.Canceled, err)
	})
}

func TestNewTransactionEvent(t *testing.T) {
	ev := NewTransactionEvent(42, OpDeleted)

	assert.Equal(t, int64(42), ev.TransactionID)
	assert.Equal(t, OpDeleted, ev.Op)
	_, err := uuid.Parse(ev.EventID)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ev.Timestamp, time.Second)
	assert.NotEqual(t, ev.EventID, NewTransactionEvent(42, OpDeleted).EventID)
}

func TestTransactionEventFromJSON(t *testing.T) {
	ev, err := TransactionEventFromJSON([]byte(`{"event_id":"e1","transaction_id":7,"op":"saved","timestamp":"2024-01-01T12:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(7), ev.TransactionID)
	assert.True(t, ev.Timestamp.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))

	_, err = TransactionEventFromJSON([]byte(`{"transaction_id":"x"}`))
	assert.Error(t, err)

	_, err = TransactionEventFromJSON([]byte(`{"transaction_id":1,"op":"renamed"}`))
	assert.Error(t, err)
}
