package runtime

import (
	"fmt"
	"roomchat/domain"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Add_One_Room_One_Participant(t *testing.T) {
	req := require.New(t)
	registry := NewPresenceRegistry()
	roomID := domain.RoomID("r1")

	// Given no room exists
	req.Empty(registry.roomMembers)

	// When a participant joins a room
	registry.Add(roomID, "alice")

	// Then
	req.Len(registry.roomMembers, 1)
	req.Equal([]string{"alice"}, registry.List(roomID))
}

func TestRegistry_Add_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewPresenceRegistry()
	roomID := domain.RoomID("r1")

	registry.Add(roomID, "alice")
	registry.Add(roomID, "bob")
	registry.Add(roomID, "alice")

	req.Equal([]string{"alice", "bob"}, registry.List(roomID))
}

func TestRegistry_Remove_Last_Member_Deletes_Room(t *testing.T) {
	req := require.New(t)
	registry := NewPresenceRegistry()
	roomID := domain.RoomID("r1")

	// Given two participants in a room
	registry.Add(roomID, "alice")
	registry.Add(roomID, "bob")

	// When one leaves, the room is kept
	registry.Remove(roomID, "alice")
	req.Equal([]string{"bob"}, registry.List(roomID))
	req.Contains(registry.roomMembers, roomID)

	// When the last one leaves, the room entry is gone
	registry.Remove(roomID, "bob")
	req.NotContains(registry.roomMembers, roomID)
	req.Empty(registry.List(roomID))
	req.NotNil(registry.List(roomID))
}

func TestRegistry_Remove_Absent_Is_NoOp(t *testing.T) {
	req := require.New(t)
	registry := NewPresenceRegistry()
	registry.Add("r1", "alice")

	registry.Remove("r1", "ghost")
	registry.Remove("r2", "alice")

	req.Equal([]string{"alice"}, registry.List("r1"))
	req.Len(registry.roomMembers, 1)
}

func TestRegistry_List_Returns_A_Copy(t *testing.T) {
	req := require.New(t)
	registry := NewPresenceRegistry()
	registry.Add("r1", "alice")

	names := registry.List("r1")
	names[0] = "mallory"

	req.Equal([]string{"alice"}, registry.List("r1"))
}

func TestRegistry_Concurrent_Add_Remove(t *testing.T) {
	req := require.New(t)
	registry := NewPresenceRegistry()
	roomID := domain.RoomID("r1")

	// When 50 goroutines join then leave concurrently
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("user-%d", i)
			registry.Add(roomID, name)
			registry.Remove(roomID, name)
		}(i)
	}
	wg.Wait()

	// Then no update is lost and the room does not linger
	req.Empty(registry.roomMembers)
	req.Empty(registry.Rooms())
}
