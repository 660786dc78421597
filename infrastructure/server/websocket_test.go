package server

import (
	"context"
	"log/slog"
	"net"
	"roomchat/client"
	"roomchat/domain/event"
	"roomchat/repositories"
	"roomchat/runtime"
	"roomchat/runtime/workers"
	"roomchat/services"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

// startChat runs the whole stack on a real listener and returns its ws url.
func startChat(t *testing.T) string {
	t.Helper()
	log := slog.Default()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)

	history := services.NewHistoryService(repositories.NewMessageRepository(db, log), log, 50, 100, time.Second)
	directory := services.NewRoomDirectory(repositories.NewRoomRepository(db), log, "http://chat.local", time.Second)
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, time.Second), history, directory,
		runtime.OrchestratorConfig{BufferSize: 64, SinkTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, orchestrator.Start(ctx))

	server := NewServer(log, Config{
		ConnectionBufferSize: 32,
		PingInterval:         time.Second,
		WriteTimeout:         time.Second,
		MaxMessageSize:       4096,
	}, orchestrator, history, directory, nil, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = server.Serve(ln) }()

	t.Cleanup(func() {
		_ = server.Shutdown(context.Background())
		orchestrator.Stop()
		cancel()
		_ = db.Close()
	})
	return "ws://" + ln.Addr().String() + "/ws"
}

func dial(t *testing.T, url string) *client.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestWebSocket_Global_Conversation(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := startChat(t)
	alice, bob := dial(t, url), dial(t, url)

	// Given alice then bob in global
	req.NoError(alice.Join("alice"))
	_, err := alice.WaitFor(ctx, event.UsersUpdate)
	req.NoError(err)
	req.NoError(bob.Join("bob"))
	history, err := bob.WaitFor(ctx, event.RoomHistory)
	req.NoError(err)
	req.JSONEq(`[]`, string(history.Data))

	joined, err := alice.WaitFor(ctx, event.UserJoined)
	req.NoError(err)
	req.JSONEq(`{"username":"bob"}`, string(joined.Data))

	// When bob talks
	req.NoError(bob.SendMessage("", "bob", "hello"))

	// Then alice receives it in global
	frame, err := alice.WaitFor(ctx, event.ChatMessage)
	req.NoError(err)
	payload, err := client.Decode[event.ChatMessagePayload](frame)
	req.NoError(err)
	req.Equal("global", payload.RoomID)
	req.Equal("hello", payload.Text)
	req.Equal("bob", payload.User)

	// When bob leaves
	req.NoError(bob.Close())

	// Then alice is told
	left, err := alice.WaitFor(ctx, event.UserLeft)
	req.NoError(err)
	req.JSONEq(`{"username":"bob"}`, string(left.Data))
	roster, err := alice.WaitFor(ctx, event.UsersUpdate)
	req.NoError(err)
	req.JSONEq(`["alice"]`, string(roster.Data))
}

func TestWebSocket_Bad_Frames_Keep_Connection(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := startChat(t)
	alice := dial(t, url)

	// When sending an unknown event
	req.NoError(alice.Send("dance", map[string]string{}))

	// Then an error comes back and the connection still works
	frame, err := alice.WaitFor(ctx, event.Error)
	req.NoError(err)
	payload, err := client.Decode[event.ErrorPayload](frame)
	req.NoError(err)
	req.Contains(payload.Message, "dance")

	req.NoError(alice.Join("alice"))
	_, err = alice.WaitFor(ctx, event.RoomHistory)
	req.NoError(err)
}

func TestWebSocket_Rooms_Are_Isolated(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := startChat(t)
	alice, bob := dial(t, url), dial(t, url)

	req.NoError(alice.JoinRoom("r1", "alice"))
	_, err := alice.WaitFor(ctx, event.UsersUpdate)
	req.NoError(err)
	req.NoError(bob.JoinRoom("r2", "bob"))
	_, err = bob.WaitFor(ctx, event.UsersUpdate)
	req.NoError(err)

	// When both talk in their rooms
	req.NoError(bob.SendMessage("r2", "bob", "r2 only"))
	req.NoError(alice.SendMessage("r1", "alice", "r1 only"))

	// Then alice only sees her room
	frame, err := alice.WaitFor(ctx, event.ChatMessage)
	req.NoError(err)
	payload, err := client.Decode[event.ChatMessagePayload](frame)
	req.NoError(err)
	req.Equal("r1 only", payload.Text)
}
