// Package runtime owns the live state of the chat: sessions, presence and
// delivery. Persistence and room lookups are delegated to services.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"roomchat/contract"
	"roomchat/domain"
	"roomchat/domain/event"
	"roomchat/errors"
	"roomchat/runtime/workers"
	"roomchat/services"
	"sync"
	"time"

	"github.com/samber/lo"
)

type OrchestratorConfig struct {
	BufferSize         int
	SinkTimeout        time.Duration
	HistoryLimit       int
	LegacyBroadcastAll bool
}

// Orchestrator wires the presence registry, the dispatcher and the session
// manager, and runs the background workers under supervision.
type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     contract.ISupervisor
	registry       *PresenceRegistry
	dispatcher     *Dispatcher
	sessions       *SessionManager
	domainEvents   chan event.DomainEvent
	permanentSinks []contract.EventSink
	workers        []contract.Worker
	sinkTimeout    time.Duration
	started        bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	history services.IHistoryService, directory services.IRoomDirectory, config OrchestratorConfig) *Orchestrator {
	domainEvents := make(chan event.DomainEvent, lo.Ternary(config.BufferSize > 0, config.BufferSize, 1))
	registry := NewPresenceRegistry()
	dispatcher := NewDispatcher(log)
	sessions := NewSessionManager(log, registry, dispatcher, history, directory, domainEvents, SessionManagerConfig{
		HistoryLimit:       config.HistoryLimit,
		LegacyBroadcastAll: config.LegacyBroadcastAll,
	})
	dispatcher.Bind(sessions)
	return &Orchestrator{
		log:          log,
		supervisor:   supervisor,
		registry:     registry,
		dispatcher:   dispatcher,
		sessions:     sessions,
		domainEvents: domainEvents,
		sinkTimeout:  config.SinkTimeout,
	}
}

// Add registers sinks receiving every domain event. Must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) *Orchestrator {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
	return o
}

// AddWorkers registers extra supervised workers. Must be called before Start.
func (o *Orchestrator) AddWorkers(ws ...contract.Worker) *Orchestrator {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.workers = append(o.workers, ws...)
	return o
}

// Connect registers the outbox of a new connection and opens its session.
func (o *Orchestrator) Connect(connID domain.ConnID, outbox contract.Outbox) {
	o.dispatcher.Register(connID, outbox)
	o.sessions.Connect(connID)
	o.log.Debug("Connection opened", "conn", connID)
}

// Handle applies one inbound command of a connection.
func (o *Orchestrator) Handle(ctx context.Context, connID domain.ConnID, cmd domain.Command) error {
	switch c := cmd.(type) {
	case domain.JoinCommand:
		return o.sessions.Join(ctx, connID, c.Username)
	case domain.JoinRoomCommand:
		return o.sessions.JoinRoom(ctx, connID, c.Room, c.Username)
	case domain.SendMessageCommand:
		return o.sessions.SendMessage(ctx, connID, c)
	case domain.LegacySendMessageCommand:
		return o.sessions.SendLegacyMessage(ctx, connID, c)
	case domain.DisconnectCommand:
		return o.sessions.Disconnect(ctx, connID)
	default:
		return fmt.Errorf("%w: %T", errors.ErrUnknownEvent, cmd)
	}
}

// Stats is the live view exposed by the health endpoint.
func (o *Orchestrator) Stats() map[string]any {
	rooms := lo.MapKeys(o.registry.Rooms(), func(_ int, roomID domain.RoomID) string {
		return roomID.String()
	})
	return map[string]any{
		"connections": o.dispatcher.Connections(),
		"sessions":    o.sessions.Count(),
		"rooms":       rooms,
	}
}

// Roster returns the display names present in a room.
func (o *Orchestrator) Roster(roomID domain.RoomID) []string {
	return o.registry.List(roomID)
}

// Start launches the event fanout and the extra workers. It does not block.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return nil
	}
	o.started = true
	fanout := workers.NewEventFanout(o.log, o.domainEvents, o.sinkTimeout).Add(o.permanentSinks...)
	o.supervisor.Add(fanout)
	o.supervisor.Add(o.workers...)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers",
		"sinks", len(o.permanentSinks), "workers", len(o.workers)+1)
	go o.supervisor.Run(ctx)
	return nil
}

// Stop cancels every supervised worker.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
