package event

import (
	"roomchat/domain"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is published to the fanout after a state change has been
// applied. Permanent sinks (durable presence, projections) consume them.
type DomainEvent interface {
	RoomID() domain.RoomID
}

type ParticipantJoined struct {
	ConnID   domain.ConnID
	Username string
	Room     domain.RoomID
	At       time.Time
}

func (p ParticipantJoined) RoomID() domain.RoomID { return p.Room }

// ParticipantLeft is published on room switch and on disconnect.
type ParticipantLeft struct {
	ConnID       domain.ConnID
	Username     string
	Room         domain.RoomID
	At           time.Time
	Disconnected bool
}

func (p ParticipantLeft) RoomID() domain.RoomID { return p.Room }

type MessagePosted struct {
	ID        uuid.UUID
	Room      domain.RoomID
	Author    string
	Content   string
	At        time.Time
	Persisted bool
}

func (m MessagePosted) RoomID() domain.RoomID { return m.Room }
