package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikerlight/store-api/internal/core/domain"
)

type stubOutboxRepo struct {
	mu        sync.Mutex
	events    []domain.OutboxEvent
	processed []int64
	fetchErr  error
	markErr   error
}

func (r *stubOutboxRepo) Unprocessed(_ context.Context, limit int) ([]domain.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	var out []domain.OutboxEvent
	for _, e := range r.events {
		if !r.isProcessed(e.ID) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubOutboxRepo) MarkProcessed(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	r.processed = append(r.processed, id)
	return nil
}

func (r *stubOutboxRepo) processedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.processed)
}

func (r *stubOutboxRepo) isProcessed(id int64) bool {
	for _, p := range r.processed {
		if p == id {
			return true
		}
	}
	return false
}

type stubWriter struct {
	msgs   []kafka.Message
	failOn string
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		if string(m.Key) == w.failOn {
			return errors.New("broker unavailable")
		}
		w.msgs = append(w.msgs, m)
	}
	return nil
}

func outboxFixture() *stubOutboxRepo {
	return &stubOutboxRepo{events: []domain.OutboxEvent{
		{ID: 1, AggregateID: "10", EventType: domain.EventSaleCompleted, Payload: []byte(`{"sale_id":10}`)},
		{ID: 2, AggregateID: "7", EventType: domain.EventSubscriptionPurchased, Payload: []byte(`{"subscription_id":7}`)},
	}}
}

func TestOutboxPoller_PublishesAndMarks(t *testing.T) {
	repo := outboxFixture()
	w := &stubWriter{}
	p := NewOutboxPoller(repo, w, 0, zerolog.Nop())

	n := p.PublishPending(context.Background())

	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 2}, repo.processed)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "10", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"sale_id":10}`, string(w.msgs[0].Value))
	require.Len(t, w.msgs[0].Headers, 1)
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, domain.EventSaleCompleted, string(w.msgs[0].Headers[0].Value))

	// Nothing left on the next tick.
	assert.Equal(t, 0, p.PublishPending(context.Background()))
}

func TestOutboxPoller_FailedPublishIsRetried(t *testing.T) {
	repo := outboxFixture()
	w := &stubWriter{failOn: "10"}
	p := NewOutboxPoller(repo, w, 0, zerolog.Nop())

	assert.Equal(t, 1, p.PublishPending(context.Background()))
	assert.Equal(t, []int64{2}, repo.processed)

	w.failOn = ""
	assert.Equal(t, 1, p.PublishPending(context.Background()))
	assert.Equal(t, []int64{2, 1}, repo.processed)
}

func TestOutboxPoller_FetchError(t *testing.T) {
	repo := &stubOutboxRepo{fetchErr: errors.New("db down")}
	w := &stubWriter{}

	assert.Equal(t, 0, NewOutboxPoller(repo, w, 0, zerolog.Nop()).PublishPending(context.Background()))
	assert.Empty(t, w.msgs)
}

func TestOutboxPoller_MarkErrorNotCounted(t *testing.T) {
	repo := outboxFixture()
	repo.markErr = errors.New("db down")

	assert.Equal(t, 0, NewOutboxPoller(repo, &stubWriter{}, 0, zerolog.Nop()).PublishPending(context.Background()))
}

func TestOutboxPoller_RunStopsOnCancel(t *testing.T) {
	repo := outboxFixture()
	p := NewOutboxPoller(repo, &stubWriter{}, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return repo.processedCount() == 2 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
