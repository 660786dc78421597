package workers

import (
	"context"
	"fmt"
	"log/slog"
	"roomchat/contract"
	"roomchat/domain/event"
	"time"
)

// EventFanout hands every domain event to the permanent sinks (durable
// presence, room activity). Delivery is best effort: each sink call is
// bounded by the sink timeout and a failure is only logged.
// Sinks are called one after the other so a sink sees the events in
// publication order.
type EventFanout struct {
	Log         *slog.Logger
	DomainEvent <-chan event.DomainEvent
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, domainEvent <-chan event.DomainEvent, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{Log: log, DomainEvent: domainEvent, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.DomainEvent:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping domain event fanout")
			return nil
		}
	}
}

// Fanout One sink for each event
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.Log.Warn("Sink failed to consume event", "sink", fmt.Sprintf("%T", sink), "room", evt.RoomID(), "error", err)
		}
		cancel()
	}
}
