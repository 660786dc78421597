// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"roomchat/errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event.
type Message struct {
	ID        uuid.UUID // unique identifier
	Room      RoomID    // empty on legacy records
	Author    string
	Content   string
	CreatedAt time.Time // assigned by the store
}

// EffectiveRoom is the room the message belongs to for query purposes.
func (m Message) EffectiveRoom() RoomID {
	return m.Room.OrGlobal()
}

// NewMessage trims author and content and rejects blank values.
// CreatedAt is left zero, the store assigns it.
func NewMessage(author, content string, room RoomID) (Message, error) {
	author = strings.TrimSpace(author)
	content = strings.TrimSpace(content)
	if author == "" {
		return Message{}, errors.ErrEmptyAuthor
	}
	if content == "" {
		return Message{}, errors.ErrEmptyMessage
	}
	return Message{
		ID:      uuid.New(),
		Room:    room,
		Author:  author,
		Content: content,
	}, nil
}
