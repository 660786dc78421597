package runtime

import (
	"roomchat/domain"
	"sync"
)

// Set is an insertion-ordered set of display names.
type Set struct {
	order []string
	index map[string]struct{}
}

func newSet() *Set {
	return &Set{index: make(map[string]struct{})}
}

func (s *Set) add(name string) {
	if _, ok := s.index[name]; ok {
		return
	}
	s.index[name] = struct{}{}
	s.order = append(s.order, name)
}

func (s *Set) remove(name string) {
	if _, ok := s.index[name]; !ok {
		return
	}
	delete(s.index, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Set) len() int { return len(s.order) }

// PresenceRegistry maps a room to the display names currently joined to it.
// Every mutation is a single critical section.
type PresenceRegistry struct {
	mu          sync.RWMutex
	roomMembers map[domain.RoomID]*Set // map room to users
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		roomMembers: make(map[domain.RoomID]*Set),
	}
}

// Add inserts a name into a room, creating the room entry on the fly.
func (r *PresenceRegistry) Add(roomID domain.RoomID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		members = newSet()
		r.roomMembers[roomID] = members
	}
	members.add(name)
}

// Remove takes a name out of a room and ensures no empty sets are left in
// the room map, so memory stays bounded with room churn.
func (r *PresenceRegistry) Remove(roomID domain.RoomID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return
	}
	members.remove(name)

	// If no one is left in the room, remove the room entry entirely
	if members.len() == 0 {
		delete(r.roomMembers, roomID)
	}
}

// List returns a copy of the room's names in insertion order.
// The order is for display only.
func (r *PresenceRegistry) List(roomID domain.RoomID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return []string{}
	}
	return append([]string(nil), members.order...)
}

// Rooms returns the number of names per occupied room.
func (r *PresenceRegistry) Rooms() map[domain.RoomID]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make(map[domain.RoomID]int, len(r.roomMembers))
	for roomID, members := range r.roomMembers {
		res[roomID] = members.len()
	}
	return res
}
