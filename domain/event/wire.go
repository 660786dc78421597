package event

import (
	"roomchat/domain"
	"time"

	"github.com/samber/lo"
)

// Outbound event names, as seen by clients.
const (
	RoomHistory   = "room-history"
	UserJoined    = "user-joined"
	UserLeft      = "user-left"
	UsersUpdate   = "users_update"
	ChatMessage   = "chat-message"
	LegacyMessage = "chat message"
	Error         = "error"
)

// Outbound is one frame on its way to a connection.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// TimeLayout is used on every wire timestamp so a value read from a
// response can be sent back as a pagination cursor unchanged.
const TimeLayout = time.RFC3339Nano

func FormatTime(t time.Time) string { return t.UTC().Format(TimeLayout) }

// HistoryMessage is the shape of one entry of room-history.
type HistoryMessage struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type UserPayload struct {
	Username string `json:"username"`
}

type ChatMessagePayload struct {
	ID        string `json:"id"`
	RoomID    string `json:"roomId"`
	User      string `json:"user"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type LegacyMessagePayload struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// APIMessage is the HTTP history shape.
type APIMessage struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	CreatedAt string `json:"createdAt"`
}

func NewRoomHistory(messages []domain.Message) Outbound {
	return Outbound{Event: RoomHistory, Data: ToHistoryMessages(messages)}
}

func ToHistoryMessages(messages []domain.Message) []HistoryMessage {
	return lo.Map(messages, func(m domain.Message, _ int) HistoryMessage {
		return HistoryMessage{
			ID:        m.ID.String(),
			User:      m.Author,
			Text:      m.Content,
			Timestamp: FormatTime(m.CreatedAt),
		}
	})
}

func ToAPIMessages(messages []domain.Message) []APIMessage {
	return lo.Map(messages, func(m domain.Message, _ int) APIMessage {
		ts := FormatTime(m.CreatedAt)
		return APIMessage{
			ID:        m.ID.String(),
			Username:  m.Author,
			Message:   m.Content,
			Timestamp: ts,
			CreatedAt: ts,
		}
	})
}

func NewUserJoined(username string) Outbound {
	return Outbound{Event: UserJoined, Data: UserPayload{Username: username}}
}

func NewUserLeft(username string) Outbound {
	return Outbound{Event: UserLeft, Data: UserPayload{Username: username}}
}

func NewUsersUpdate(names []string) Outbound {
	if names == nil {
		names = []string{}
	}
	return Outbound{Event: UsersUpdate, Data: names}
}

func NewChatMessage(m domain.Message) Outbound {
	return Outbound{Event: ChatMessage, Data: ChatMessagePayload{
		ID:        m.ID.String(),
		RoomID:    m.EffectiveRoom().String(),
		User:      m.Author,
		Text:      m.Content,
		Timestamp: FormatTime(m.CreatedAt),
	}}
}

// NewLegacyMessage keeps the numeric millisecond id legacy clients expect.
func NewLegacyMessage(username, message string, at time.Time) Outbound {
	return Outbound{Event: LegacyMessage, Data: LegacyMessagePayload{
		ID:        at.UnixMilli(),
		Username:  username,
		Message:   message,
		Timestamp: FormatTime(at),
	}}
}

func NewError(err error) Outbound {
	return Outbound{Event: Error, Data: ErrorPayload{Message: err.Error()}}
}
