package domain

import (
	"fmt"
	"strings"
	"time"
)

// RoomID identifies a broadcast scope. The empty value means "no room",
// which legacy records carry and which queries treat as the global scope.
type RoomID string

const (
	GlobalRoom      RoomID = "global"
	DefaultCreator         = "system"
	UnknownCreator         = "Unknown"
	RoomTokenLength        = 10
)

func (r RoomID) String() string { return string(r) }

func (r RoomID) IsZero() bool { return strings.TrimSpace(string(r)) == "" }

// OrGlobal resolves an absent room to the global one.
func (r RoomID) OrGlobal() RoomID {
	if r.IsZero() {
		return GlobalRoom
	}
	return r
}

type Room struct {
	ID        RoomID
	Name      string
	CreatedBy string
	CreatedAt time.Time
	// Transient is set on descriptors synthesized when the directory has no record.
	Transient bool
}

// FallbackRoom synthesizes the descriptor used when the directory cannot
// resolve a room, so the join still goes through.
func FallbackRoom(id RoomID, now time.Time) Room {
	return Room{
		ID:        id,
		Name:      fmt.Sprintf("Room %s", id),
		CreatedBy: UnknownCreator,
		CreatedAt: now.UTC(),
		Transient: true,
	}
}

type LookupStatus int

const (
	RoomFound LookupStatus = iota
	RoomNotFound
	DirectoryUnavailable
)

func (s LookupStatus) String() string {
	switch s {
	case RoomFound:
		return "found"
	case RoomNotFound:
		return "not_found"
	case DirectoryUnavailable:
		return "directory_unavailable"
	default:
		return "unknown"
	}
}

// LookupResult is what the room directory answers. Room is only meaningful
// when Status is RoomFound.
type LookupResult struct {
	Status LookupStatus
	Room   Room
}

func Found(room Room) LookupResult { return LookupResult{Status: RoomFound, Room: room} }

func NotFound() LookupResult { return LookupResult{Status: RoomNotFound} }

func Unavailable() LookupResult { return LookupResult{Status: DirectoryUnavailable} }
