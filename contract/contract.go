//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"roomchat/domain"
	"roomchat/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

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

// EventSink consumes domain events published after a state change.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Outbox is the outbound side of one connection.
// Send never blocks and reports whether the frame was accepted.
type Outbox interface {
	Send(out event.Outbound) bool
	Close()
}

type IPresenceRegistry interface {
	Add(roomID domain.RoomID, name string)
	Remove(roomID domain.RoomID, name string)
	List(roomID domain.RoomID) []string
}

// Membership answers which connections currently receive a room's events.
type Membership interface {
	ConnectionsIn(roomID domain.RoomID) []domain.ConnID
}

type IDispatcher interface {
	Register(connID domain.ConnID, outbox Outbox)
	Unregister(connID domain.ConnID)
	EmitToRoom(roomID domain.RoomID, out event.Outbound) int
	EmitToOthersInRoom(roomID domain.RoomID, except domain.ConnID, out event.Outbound) int
	EmitToConnection(connID domain.ConnID, out event.Outbound) bool
	EmitToAll(out event.Outbound) int
}

type IOrchestrator interface {
	Connect(connID domain.ConnID, outbox Outbox)
	Handle(ctx context.Context, connID domain.ConnID, cmd domain.Command) error
	Stats() map[string]any
	Start(ctx context.Context) error
	Stop()
}

// HealthReporter publishes the serving state seen by health probes.
type HealthReporter interface {
	SetServing(serving bool)
}
