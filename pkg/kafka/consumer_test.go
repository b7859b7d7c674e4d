package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
)

// fakeReader serves queued messages, then blocks until the context ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafkago.Message
	committed []int64
	fetchErr  error
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if r.fetchErr != nil {
		err := r.fetchErr
		r.mu.Unlock()
		return kafkago.Message{}, err
	}
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConsumerCommitsHandledMessages(t *testing.T) {
	reader := &fakeReader{queue: []kafkago.Message{
		{Offset: 1, Value: []byte("ok"), Headers: []kafkago.Header{{Key: "event_type", Value: []byte("outcome")}}},
		{Offset: 2, Value: []byte("retry")},
		{Offset: 3, Value: []byte("poison")},
		{Offset: 4, Value: []byte("ok")},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	var seen []string
	handler := func(_ context.Context, msg Message) error {
		seen = append(seen, string(msg.Value))
		if len(seen) == 4 {
			cancel()
		}
		switch string(msg.Value) {
		case "retry":
			return errors.New("store down")
		case "poison":
			return errors.Join(ErrSkipMessage, errors.New("bad json"))
		}
		if len(seen) == 1 && msg.Headers["event_type"] != "outcome" {
			t.Errorf("unexpected headers %v", msg.Headers)
		}
		return nil
	}

	c := newConsumer(reader, "loan-risk.outcomes", "loanrisk", handler, discardLogger())
	if err := c.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seen) != 4 {
		t.Fatalf("expected 4 messages handled, got %d", len(seen))
	}
	want := []int64{1, 3}
	if len(reader.committed) < 2 || reader.committed[0] != want[0] || reader.committed[1] != want[1] {
		t.Fatalf("expected offsets %v committed first, got %v", want, reader.committed)
	}
	for _, off := range reader.committed {
		if off == 2 {
			t.Fatal("failed message must not be committed")
		}
	}
}

func TestConsumerReturnsFetchErrors(t *testing.T) {
	reader := &fakeReader{fetchErr: errors.New("broker gone")}
	c := newConsumer(reader, "t", "g", func(context.Context, Message) error { return nil }, discardLogger())

	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if !reader.closed {
		t.Error("expected reader to be closed")
	}
}

func TestNewConsumerRequiresGroup(t *testing.T) {
	if _, err := NewConsumer(Config{Brokers: []string{"kafka:9092"}}, "t", nil, discardLogger()); err == nil {
		t.Fatal("expected error without consumer group")
	}
}
