package broker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/enum"
	"github.com/manwah-pos/api/internal/model"
	"github.com/manwah-pos/api/internal/store"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	declareErr error
	publishErr error
	out        chan published
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{out: make(chan published, 16)}
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.declared = append(f.declared, name+"/"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.out <- published{exchange: exchange, key: key, msg: msg}
	return nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNewPublisherDeclaresExchange(t *testing.T) {
	ch := newFakeChannel()
	_, err := NewPublisher(ch, discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"order_events/topic"}, ch.declared)

	ch.declareErr = errors.New("access refused")
	_, err = NewPublisher(ch, discard())
	assert.Error(t, err)
}

func TestPublisherForwardsEvents(t *testing.T) {
	ch := newFakeChannel()
	p, err := NewPublisher(ch, discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	order := model.Order{ID: uuid.New(), TableNumber: 3, Status: model.OrderReady, Version: 4}
	p.Notify(store.Event{Type: enum.EventItemStatusChanged, Order: order, At: time.Now()})

	select {
	case got := <-ch.out:
		assert.Equal(t, Exchange, got.exchange)
		assert.Equal(t, enum.EventItemStatusChanged, got.key)
		assert.Equal(t, "application/json", got.msg.ContentType)
		assert.Equal(t, order.ID.String()+"-4", got.msg.MessageId)

		var body struct {
			Type  string      `json:"type"`
			Order model.Order `json:"order"`
		}
		require.NoError(t, json.Unmarshal(got.msg.Body, &body))
		assert.Equal(t, enum.EventItemStatusChanged, body.Type)
		assert.Equal(t, order.ID, body.Order.ID)
		assert.Equal(t, model.OrderReady, body.Order.Status)
	case <-time.After(time.Second):
		t.Fatal("event was not published")
	}
}

func TestNotifyDoesNotBlockWhenQueueFull(t *testing.T) {
	ch := newFakeChannel()
	p, err := NewPublisher(ch, discard())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize+10; i++ {
			p.Notify(store.Event{Type: enum.EventOrderCreated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked without a running publisher")
	}
	assert.Len(t, p.queue, queueSize)
}
