//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/venturehub/community-chat/domain"
	"github.com/venturehub/community-chat/domain/event"
)

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming in the interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives fanned-out events for one connection. Consume must not
// block past the context deadline; a failed Consume is the caller's problem
// to log, never to retry.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Subscription pairs a connection handle with its sink.
type Subscription struct {
	ID   string
	Sink EventSink
}

type IRegistry interface {
	Subscribe(connID string, sink EventSink)
	Unsubscribe(connID string)
	Snapshot() []Subscription
	Len() int
}

// IPublisher is the ingest pipeline's view of the broadcast hub.
type IPublisher interface {
	Publish(ctx context.Context, msg domain.EnrichedMessage) error
}
