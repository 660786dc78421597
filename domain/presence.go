package domain

import "time"

// PresenceRecord is the durable online/offline trace of one connection.
type PresenceRecord struct {
	ConnID   ConnID
	Username string
	Room     RoomID
	Online   bool
	LastSeen time.Time
}
