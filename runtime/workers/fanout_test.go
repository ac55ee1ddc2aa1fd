package workers_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/venturehub/community-chat/contract"
	"github.com/venturehub/community-chat/domain"
	"github.com/venturehub/community-chat/domain/event"
	"github.com/venturehub/community-chat/runtime"
	"github.com/venturehub/community-chat/runtime/workers"
)

type recordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) recorded() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

type failingSink struct{}

func (failingSink) Consume(context.Context, event.DomainEvent) error {
	return fmt.Errorf("connection gone")
}

func broadcastOf(body string) event.MessageBroadcast {
	return event.MessageBroadcast{Message: domain.EnrichedMessage{
		ID:        uuid.New(),
		SenderID:  "sender-1",
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}}
}

func TestFanoutWorker_Delivers_To_All_Connections(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()
	a, b, c := &recordingSink{}, &recordingSink{}, &recordingSink{}
	registry.Subscribe("conn-a", a)
	registry.Subscribe("conn-b", b)
	registry.Subscribe("conn-c", c)

	worker := workers.NewFanoutWorker(slog.Default(), registry, nil, time.Second)
	evt := broadcastOf("hello everyone")

	worker.Fanout(context.Background(), evt)

	// Exactly one identical delivery per connection, origin included.
	for _, sink := range []*recordingSink{a, b, c} {
		events := sink.recorded()
		req.Len(events, 1)
		req.Equal(evt, events[0])
	}
}

func TestFanoutWorker_Failure_Is_Isolated(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()
	healthy := &recordingSink{}
	registry.Subscribe("conn-broken", failingSink{})
	registry.Subscribe("conn-healthy", healthy)

	worker := workers.NewFanoutWorker(slog.Default(), registry, nil, time.Second)

	// A failed delivery must not prevent the others.
	worker.Fanout(context.Background(), broadcastOf("still delivered"))

	req.Len(healthy.recorded(), 1)
}

func TestFanoutWorker_Unregistered_Connection_Not_Delivered(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()
	a, b := &recordingSink{}, &recordingSink{}
	registry.Subscribe("conn-a", a)
	registry.Subscribe("conn-b", b)
	registry.Unsubscribe("conn-a")

	worker := workers.NewFanoutWorker(slog.Default(), registry, nil, time.Second)
	worker.Fanout(context.Background(), broadcastOf("only for b"))

	req.Empty(a.recorded())
	req.Len(b.recorded(), 1)
}

func TestFanoutWorker_Preserves_Publish_Order(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()
	sink := &recordingSink{}
	registry.Subscribe("conn-a", sink)

	events := make(chan event.DomainEvent, 2)
	worker := workers.NewFanoutWorker(slog.Default(), registry, events, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	m1 := broadcastOf("m1")
	m2 := broadcastOf("m2")
	events <- m1
	events <- m2

	req.Eventually(func() bool {
		return len(sink.recorded()) == 2
	}, time.Second, 10*time.Millisecond)

	recorded := sink.recorded()
	req.Equal(m1, recorded[0])
	req.Equal(m2, recorded[1])

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("worker did not stop on context cancellation")
	}
}

var _ contract.EventSink = (*recordingSink)(nil)
