package domain

// Command is one inbound client event, already decoded by the transport.
type Command interface {
	Kind() CommandKind
}

type CommandKind string

const (
	JoinKind              CommandKind = "join"
	JoinRoomKind          CommandKind = "join-room"
	SendMessageKind       CommandKind = "chat-message"
	LegacySendMessageKind CommandKind = "chat message"
	DisconnectKind        CommandKind = "disconnect"
)

type JoinCommand struct {
	Username string
}

func (JoinCommand) Kind() CommandKind { return JoinKind }

type JoinRoomCommand struct {
	Room     RoomID
	Username string
}

func (JoinRoomCommand) Kind() CommandKind { return JoinRoomKind }

type SendMessageCommand struct {
	Room    RoomID // optional
	User    string
	Content string
}

func (SendMessageCommand) Kind() CommandKind { return SendMessageKind }

type LegacySendMessageCommand struct {
	Username string
	Content  string
}

func (LegacySendMessageCommand) Kind() CommandKind { return LegacySendMessageKind }

type DisconnectCommand struct{}

func (DisconnectCommand) Kind() CommandKind { return DisconnectKind }
