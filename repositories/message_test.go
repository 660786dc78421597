package repositories

import (
	"log/slog"
	"roomchat/domain"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func storeAll(t *testing.T, repository *MessageRepository, messages ...domain.Message) []domain.Message {
	var stored []domain.Message
	for _, m := range messages {
		s, err := repository.StoreMessage(m)
		require.NoError(t, err)
		stored = append(stored, s)
	}
	return stored
}

func Test_Record_Multiple_Message(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	room := domain.RoomID("r1")
	content := "this message will self destruct in 5 seconds"

	// Given three messages stored in the same room
	stored := storeAll(t, repository,
		domain.Message{Room: room, Author: "Alice", Content: content},
		domain.Message{Room: room, Author: "Bob", Content: content},
		domain.Message{Room: room, Author: "Clara", Content: content},
	)

	// When fetching the room history
	fetched, err := repository.GetMessages(room, nil, 50)

	// Then they come back oldest first with their store timestamps
	req.NoError(err)
	req.Equal(stored, fetched)
	req.True(fetched[0].CreatedAt.Before(fetched[1].CreatedAt))
	req.True(fetched[1].CreatedAt.Before(fetched[2].CreatedAt))
	req.NotEqual(uuid.Nil, fetched[0].ID)
}

func Test_Recent_Returns_Newest_Page_In_Chronological_Order(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	room := domain.RoomID("r1")

	// Given 120 messages in the room
	var stored []domain.Message
	for i := 0; i < 120; i++ {
		stored = append(stored, storeAll(t, repository,
			domain.Message{Room: room, Author: "alice", Content: "m"})...)
	}

	// When fetching the last 50
	fetched, err := repository.GetMessages(room, nil, 50)

	// Then exactly the 50 most recent come back, oldest first
	req.NoError(err)
	req.Len(fetched, 50)
	req.Equal(stored[70:], fetched)
}

func Test_Before_Chaining_Exhausts_History_Without_Duplicates(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	room := domain.RoomID("r1")

	var stored []domain.Message
	for i := 0; i < 37; i++ {
		stored = append(stored, storeAll(t, repository,
			domain.Message{Room: room, Author: "alice", Content: "m"})...)
	}

	// When walking back 10 by 10 from the newest page
	page, err := repository.GetMessages(room, nil, 10)
	req.NoError(err)
	collected := page
	for len(page) > 0 {
		cursor := page[0].CreatedAt
		page, err = repository.GetMessages(room, &cursor, 10)
		req.NoError(err)
		for _, m := range page {
			// Then no message at or after the cursor is ever returned
			req.True(m.CreatedAt.Before(cursor))
		}
		collected = append(page, collected...)
	}

	// Then the whole history is covered exactly once
	req.Equal(stored, collected)
	ids := lo.Map(collected, func(m domain.Message, _ int) uuid.UUID { return m.ID })
	req.Len(lo.Uniq(ids), len(stored))
}

func Test_Before_Excludes_Message_At_Cursor(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	room := domain.RoomID("r1")
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	storeAll(t, repository,
		domain.Message{Room: room, Author: "a", Content: "old", CreatedAt: at.Add(-time.Second)},
		domain.Message{Room: room, Author: "a", Content: "cursor", CreatedAt: at},
		domain.Message{Room: room, Author: "a", Content: "new", CreatedAt: at.Add(time.Second)},
	)

	fetched, err := repository.GetMessages(room, &at, 50)

	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("old", fetched[0].Content)
}

func Test_Before_Far_Future_Cursor_Returns_Newest_Page(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	room := domain.RoomID("r1")

	// Given three messages in r1
	storeAll(t, repository,
		domain.Message{Room: room, Author: "a", Content: "m1"},
		domain.Message{Room: room, Author: "a", Content: "m2"},
		domain.Message{Room: room, Author: "a", Content: "m3"},
	)

	// When the cursor lies beyond what a nanosecond timestamp can hold
	cursor := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	fetched, err := repository.GetMessages(room, &cursor, 50)

	// Then every message is older than it
	req.NoError(err)
	req.Equal([]string{"m1", "m2", "m3"}, lo.Map(fetched, func(m domain.Message, _ int) string { return m.Content }))

	// And a cursor before the epoch finds nothing
	early := time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC)
	fetched, err = repository.GetMessages(room, &early, 50)
	req.NoError(err)
	req.Empty(fetched)
}

func Test_Legacy_Messages_Belong_To_Global_Scope_Only(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())

	// Given a legacy record without room, one global and one in r1
	storeAll(t, repository,
		domain.Message{Author: "old", Content: "legacy"},
		domain.Message{Room: domain.GlobalRoom, Author: "bob", Content: "global"},
		domain.Message{Room: "r1", Author: "carl", Content: "room"},
	)

	// When querying without room
	union, err := repository.GetMessages("", nil, 50)
	req.NoError(err)
	// Then legacy and global records are merged in time order
	req.Equal([]string{"legacy", "global"},
		lo.Map(union, func(m domain.Message, _ int) string { return m.Content }))
	req.True(union[0].Room.IsZero())

	// When querying r1, the legacy record is absent
	inRoom, err := repository.GetMessages("r1", nil, 50)
	req.NoError(err)
	req.Len(inRoom, 1)
	req.Equal("room", inRoom[0].Content)

	// When filtering exactly on global, only the explicit record remains
	exact, err := repository.GetMessages(domain.GlobalRoom, nil, 50)
	req.NoError(err)
	req.Len(exact, 1)
	req.Equal("global", exact[0].Content)
}

func Test_Global_Union_Is_Truncated_To_Limit(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	// Given legacy and global records interleaved in time
	for i := 0; i < 6; i++ {
		room := lo.Ternary(i%2 == 0, domain.RoomID(""), domain.GlobalRoom)
		storeAll(t, repository, domain.Message{
			Room: room, Author: "a", Content: string(rune('a' + i)), CreatedAt: at.Add(time.Duration(i) * time.Minute),
		})
	}

	// When asking for 3 before the last one
	cursor := at.Add(5 * time.Minute)
	fetched, err := repository.GetMessages("", &cursor, 3)

	// Then the 3 closest older records of both kinds are returned in order
	req.NoError(err)
	req.Equal([]string{"c", "d", "e"},
		lo.Map(fetched, func(m domain.Message, _ int) string { return m.Content }))
}

func Test_Room_Prefix_Does_Not_Leak_Into_Longer_Room_Id(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())

	storeAll(t, repository,
		domain.Message{Room: "a", Author: "x", Content: "short"},
		domain.Message{Room: "a:b", Author: "x", Content: "long"},
	)

	fetched, err := repository.GetMessages("a", nil, 50)

	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("short", fetched[0].Content)
}

func Test_Store_Timestamps_Are_Strictly_Monotonic(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	frozen := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repository.now = func() time.Time { return frozen }

	// Given a clock that does not move
	stored := storeAll(t, repository,
		domain.Message{Room: "r1", Author: "a", Content: "1"},
		domain.Message{Room: "r1", Author: "a", Content: "2"},
		domain.Message{Room: "r1", Author: "a", Content: "3"},
	)

	// Then every message still gets its own timestamp
	req.Equal(frozen, stored[0].CreatedAt)
	req.Equal(frozen.Add(1), stored[1].CreatedAt)
	req.Equal(frozen.Add(2), stored[2].CreatedAt)
}

func Test_GetMessages_Zero_Limit_Returns_Nothing(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), slog.Default())
	storeAll(t, repository, domain.Message{Room: "r1", Author: "a", Content: "1"})

	fetched, err := repository.GetMessages("r1", nil, 0)

	req.NoError(err)
	req.Empty(fetched)
}

func Test_Closed_Store_Reports_Unavailable(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	repository := NewMessageRepository(db, slog.Default())
	req.NoError(db.Close())

	_, err = repository.StoreMessage(domain.Message{Room: "r1", Author: "a", Content: "1"})
	req.Error(err)

	_, err = repository.GetMessages("r1", nil, 10)
	req.Error(err)
}
