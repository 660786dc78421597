package workers

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"roomchat/domain/event"
	"roomchat/mocks"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanoutWorker_Fanout(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := mocks.NewMockEventSink(ctrl)
	second := mocks.NewMockEventSink(ctrl)
	evt := event.ParticipantJoined{ConnID: "c1", Username: "alice", Room: "r1"}

	// Given two sinks, the first one failing
	gomock.InOrder(
		first.EXPECT().Consume(gomock.Any(), evt).Return(stdErrors.New("disk full")).Times(1),
		second.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1),
	)
	fanout := NewEventFanout(log, nil, time.Second).Add(first, second)

	// When an event is handled, every sink still sees it
	fanout.Fanout(context.Background(), evt)
}

func TestEventFanoutWorker_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	slow := mocks.NewMockEventSink(ctrl)
	slow.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, evt event.DomainEvent) error {
			<-ctx.Done()     // Waiting for timeout to trigger cancellation
			return ctx.Err() // Sending back "context deadline exceeded"
		}).
		Times(1)

	fanout := NewEventFanout(log, nil, 20*time.Millisecond).Add(slow)

	// When the sink blocks, the fanout gives up after the sink timeout
	start := time.Now()
	fanout.Fanout(context.Background(), event.MessagePosted{Room: "r1"})

	req.Less(time.Since(start), 500*time.Millisecond)
}

func TestEventFanoutWorker_Run_Drains_Channel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	events := make(chan event.DomainEvent, 2)
	sink := mocks.NewMockEventSink(ctrl)
	done := make(chan struct{})
	count := 0
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		Do(func(ctx context.Context, evt event.DomainEvent) {
			count++
			if count == 2 {
				close(done)
			}
		}).
		Return(nil).
		Times(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = NewEventFanout(slog.Default(), events, time.Second).Add(sink).Run(ctx) }()

	events <- event.ParticipantJoined{Room: "r1"}
	events <- event.ParticipantLeft{Room: "r1"}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("events were not fanned out")
	}
}
