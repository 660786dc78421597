// Package domain contains core concepts of the chat system.
// This file defines Session entities and their state machine.
// No runtime, network, or UI logic should be added here.
package domain

import "strings"

type ConnID string

type SessionState int

const (
	Unjoined SessionState = iota
	JoinedGlobal
	JoinedRoom
	Closed
)

func (s SessionState) String() string {
	switch s {
	case Unjoined:
		return "unjoined"
	case JoinedGlobal:
		return "joined_global"
	case JoinedRoom:
		return "joined_room"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is the server-side state of one live connection.
type Session struct {
	ConnID   ConnID
	Username string
	Room     RoomID
	State    SessionState
}

func NewSession(connID ConnID) Session {
	return Session{ConnID: connID, Room: GlobalRoom, State: Unjoined}
}

func (s Session) Joined() bool {
	return s.State == JoinedGlobal || s.State == JoinedRoom
}

// In reports whether the session currently receives events for room.
func (s Session) In(room RoomID) bool {
	return s.Joined() && s.Room == room
}

// StateFor is the joined state matching a room.
func StateFor(room RoomID) SessionState {
	if room == GlobalRoom {
		return JoinedGlobal
	}
	return JoinedRoom
}

func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
