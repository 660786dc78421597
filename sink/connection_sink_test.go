package sink

import (
	"roomchat/domain/event"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectionSink_Drops_When_Full(t *testing.T) {
	req := require.New(t)
	sink := NewConnectionSink(2)

	// Given a buffer of two frames
	req.True(sink.Send(event.NewUserJoined("a")))
	req.True(sink.Send(event.NewUserJoined("b")))

	// When a third frame arrives before the writer drained
	accepted := sink.Send(event.NewUserJoined("c"))

	// Then it is dropped without blocking
	req.False(accepted)
	req.Equal(event.NewUserJoined("a"), <-sink.Out())
	req.Equal(event.NewUserJoined("b"), <-sink.Out())
}

func TestConnectionSink_Close_Is_Idempotent_And_Refuses_Frames(t *testing.T) {
	req := require.New(t)
	sink := NewConnectionSink(4)
	req.True(sink.Send(event.NewUserLeft("a")))

	sink.Close()
	sink.Close()

	req.False(sink.Send(event.NewUserLeft("b")))
	// Buffered frames are still drained before the channel reports closed
	out, ok := <-sink.Out()
	req.True(ok)
	req.Equal(event.NewUserLeft("a"), out)
	_, ok = <-sink.Out()
	req.False(ok)
}
