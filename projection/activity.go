// Package projection builds read models from observed domain events.
// Does not emit events or interact with connections directly.
package projection

import (
	"context"
	"roomchat/domain"
	"roomchat/domain/event"
	"sync"
	"time"
)

type RoomStats struct {
	Messages      int       `json:"messages"`
	Unpersisted   int       `json:"unpersisted"`
	Joins         int       `json:"joins"`
	Leaves        int       `json:"leaves"`
	LastMessageAt time.Time `json:"lastMessageAt,omitzero"`
}

// RoomActivity counts what happened in each room since the process started.
type RoomActivity struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*RoomStats
}

func NewRoomActivity() *RoomActivity {
	return &RoomActivity{rooms: make(map[domain.RoomID]*RoomStats)}
}

func (a *RoomActivity) Consume(_ context.Context, e event.DomainEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats, ok := a.rooms[e.RoomID()]
	if !ok {
		stats = &RoomStats{}
		a.rooms[e.RoomID()] = stats
	}
	switch evt := e.(type) {
	case event.MessagePosted:
		stats.Messages++
		if !evt.Persisted {
			stats.Unpersisted++
		}
		if evt.At.After(stats.LastMessageAt) {
			stats.LastMessageAt = evt.At
		}
	case event.ParticipantJoined:
		stats.Joins++
	case event.ParticipantLeft:
		stats.Leaves++
	}
	return nil
}

func (a *RoomActivity) Snapshot() map[domain.RoomID]RoomStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	res := make(map[domain.RoomID]RoomStats, len(a.rooms))
	for roomID, stats := range a.rooms {
		res[roomID] = *stats
	}
	return res
}
