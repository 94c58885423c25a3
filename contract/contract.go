//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
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

// TokenAuthority turns a bearer credential into a subject identifier.
// Must be safe for concurrent use.
type TokenAuthority interface {
	Validate(token string) (string, error)
}

// Conn is the physical client connection as seen by a session.
// One goroutine reads while another writes.
type Conn interface {
	ReadFrame(ctx context.Context) (domain.Frame, error)
	WriteText(ctx context.Context, payload string) error
	Close() error
}

// Broadcaster is the fan-out endpoint of one room.
// Publish never blocks.
type Broadcaster interface {
	Publish(envelope domain.Envelope) uint64
	Subscribe() Subscription
}

// Subscription is a private cursor into a Broadcaster.
// Next returns how many envelopes were skipped because the subscriber lagged.
type Subscription interface {
	Next(ctx context.Context) (domain.Envelope, uint64, error)
	Close()
}

type IRegistry interface {
	GetOrCreate(room domain.RoomName) Broadcaster
	AddMember(subjectID, displayName string)
	RemoveMember(subjectID string) (domain.ConnectedUser, bool)
	Stats() domain.RegistryStats
}

// Censor rewrites a message body before it is published.
type Censor interface {
	Censor(original string) string
}
