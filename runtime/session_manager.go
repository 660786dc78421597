package runtime

import (
	"context"
	"log/slog"
	"roomchat/contract"
	"roomchat/domain"
	"roomchat/domain/event"
	"roomchat/errors"
	"roomchat/services"
	"sync"
	"time"
)

// SessionManager owns the session table and is the only writer of the
// presence registry. Locks are never held across store calls: presence is
// mutated synchronously, history is read or written afterwards, and the
// broadcasts that follow reflect the registry at that later point.
type SessionManager struct {
	mu                 sync.RWMutex
	log                *slog.Logger
	sessions           map[domain.ConnID]*domain.Session
	registry           contract.IPresenceRegistry
	dispatcher         contract.IDispatcher
	history            services.IHistoryService
	directory          services.IRoomDirectory
	domainEvents       chan<- event.DomainEvent
	historyLimit       int
	legacyBroadcastAll bool
	now                func() time.Time
}

type SessionManagerConfig struct {
	HistoryLimit       int
	LegacyBroadcastAll bool
}

func NewSessionManager(log *slog.Logger, registry contract.IPresenceRegistry, dispatcher contract.IDispatcher,
	history services.IHistoryService, directory services.IRoomDirectory,
	domainEvents chan<- event.DomainEvent, config SessionManagerConfig) *SessionManager {
	limit := config.HistoryLimit
	if limit <= 0 {
		limit = services.DefaultHistoryLimit
	}
	return &SessionManager{
		log:                log,
		sessions:           make(map[domain.ConnID]*domain.Session),
		registry:           registry,
		dispatcher:         dispatcher,
		history:            history,
		directory:          directory,
		domainEvents:       domainEvents,
		historyLimit:       limit,
		legacyBroadcastAll: config.LegacyBroadcastAll,
		now:                time.Now,
	}
}

// Connect creates the Unjoined session of a new connection.
func (m *SessionManager) Connect(connID domain.ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[connID]; ok {
		return
	}
	session := domain.NewSession(connID)
	m.sessions[connID] = &session
}

// Join moves an Unjoined session into the global room.
func (m *SessionManager) Join(ctx context.Context, connID domain.ConnID, name string) error {
	name = domain.NormalizeName(name)
	if name == "" {
		m.log.Warn("Join rejected, empty display name", "conn", connID)
		return errors.ErrEmptyName
	}

	m.mu.Lock()
	session, err := m.liveSessionLocked(connID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if session.State != domain.Unjoined {
		m.mu.Unlock()
		m.log.Debug("Join ignored, session already joined", "conn", connID, "state", session.State)
		return errors.ErrAlreadyJoined
	}
	session.Username = name
	session.Room = domain.GlobalRoom
	session.State = domain.JoinedGlobal
	m.registry.Add(domain.GlobalRoom, name)
	m.mu.Unlock()

	m.publish(event.ParticipantJoined{ConnID: connID, Username: name, Room: domain.GlobalRoom, At: m.now().UTC()})
	m.announce(ctx, connID, name, domain.GlobalRoom)
	return nil
}

// JoinRoom switches a session to another room, leaving the previous one
// first. Rooms unknown to the directory, or a directory that cannot answer,
// get a transient descriptor and the join goes through.
func (m *SessionManager) JoinRoom(ctx context.Context, connID domain.ConnID, roomID domain.RoomID, name string) error {
	name = domain.NormalizeName(name)
	if name == "" {
		m.log.Warn("Join room rejected, empty display name", "conn", connID, "room", roomID)
		return errors.ErrEmptyName
	}
	roomID = roomID.OrGlobal()

	room := m.resolveRoom(ctx, roomID)

	m.mu.Lock()
	session, err := m.liveSessionLocked(connID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	previous := *session
	movedOut := previous.Joined() && previous.Room != room.ID
	if previous.Joined() && (movedOut || previous.Username != name) {
		m.leaveLocked(connID, previous.Room, previous.Username)
	}
	session.Username = name
	session.Room = room.ID
	session.State = domain.StateFor(room.ID)
	m.registry.Add(room.ID, name)
	var previousRoster []string
	if movedOut {
		previousRoster = m.registry.List(previous.Room)
	}
	m.mu.Unlock()

	if movedOut {
		m.dispatcher.EmitToRoom(previous.Room, event.NewUsersUpdate(previousRoster))
		m.publish(event.ParticipantLeft{ConnID: connID, Username: previous.Username, Room: previous.Room, At: m.now().UTC()})
	}
	m.publish(event.ParticipantJoined{ConnID: connID, Username: name, Room: room.ID, At: m.now().UTC()})
	m.announce(ctx, connID, name, room.ID)
	return nil
}

// SendMessage persists then broadcasts a room-aware message. A store failure
// does not stop the broadcast.
func (m *SessionManager) SendMessage(ctx context.Context, connID domain.ConnID, cmd domain.SendMessageCommand) error {
	session, err := m.liveSession(connID)
	if err != nil {
		return err
	}
	roomID := cmd.Room
	if roomID.IsZero() && session.Joined() {
		roomID = session.Room
	}
	roomID = roomID.OrGlobal()

	message, err := m.persist(ctx, connID, cmd.User, cmd.Content, roomID)
	if err != nil {
		return err
	}
	m.dispatcher.EmitToRoom(roomID, event.NewChatMessage(message))
	return nil
}

// SendLegacyMessage serves the pre-rooms global-only form. It targets the
// session's room, or every connection when legacy broadcast is enabled.
func (m *SessionManager) SendLegacyMessage(ctx context.Context, connID domain.ConnID, cmd domain.LegacySendMessageCommand) error {
	session, err := m.liveSession(connID)
	if err != nil {
		return err
	}
	roomID := domain.GlobalRoom
	if session.Joined() {
		roomID = session.Room
	}

	message, err := m.persist(ctx, connID, cmd.Username, cmd.Content, roomID)
	if err != nil {
		return err
	}
	out := event.NewLegacyMessage(message.Author, message.Content, message.CreatedAt)
	if m.legacyBroadcastAll {
		m.dispatcher.EmitToAll(out)
		return nil
	}
	m.dispatcher.EmitToRoom(roomID, out)
	return nil
}

// Disconnect closes a session. Only a joined session leaves a trace:
// presence removal and the roster update for its room, plus user-left
// once the last session holding the name is gone.
func (m *SessionManager) Disconnect(_ context.Context, connID domain.ConnID) error {
	m.mu.Lock()
	session, ok := m.sessions[connID]
	if !ok || session.State == domain.Closed {
		m.mu.Unlock()
		m.dispatcher.Unregister(connID)
		return nil
	}
	previous := *session
	session.State = domain.Closed
	delete(m.sessions, connID)
	var roster []string
	nameLeft := false
	if previous.Joined() {
		nameLeft = m.leaveLocked(connID, previous.Room, previous.Username)
		roster = m.registry.List(previous.Room)
	}
	m.mu.Unlock()

	m.dispatcher.Unregister(connID)
	if !previous.Joined() {
		return nil
	}
	if nameLeft {
		m.dispatcher.EmitToRoom(previous.Room, event.NewUserLeft(previous.Username))
	}
	m.dispatcher.EmitToRoom(previous.Room, event.NewUsersUpdate(roster))
	m.publish(event.ParticipantLeft{
		ConnID:       connID,
		Username:     previous.Username,
		Room:         previous.Room,
		At:           m.now().UTC(),
		Disconnected: true,
	})
	return nil
}

// ConnectionsIn lists the connections currently joined to a room.
func (m *SessionManager) ConnectionsIn(roomID domain.RoomID) []domain.ConnID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.ConnID
	for connID, session := range m.sessions {
		if session.In(roomID) {
			res = append(res, connID)
		}
	}
	return res
}

// Session returns a copy of a live session.
func (m *SessionManager) Session(connID domain.ConnID) (domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[connID]
	if !ok {
		return domain.Session{}, false
	}
	return *session, true
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// announce sends history to the joiner and presence to the room. The store
// read happens without any lock: if the session moved or closed meanwhile,
// the notifications are skipped.
func (m *SessionManager) announce(ctx context.Context, connID domain.ConnID, name string, roomID domain.RoomID) {
	scope := roomID
	if roomID == domain.GlobalRoom {
		// Global history includes records that predate rooms
		scope = ""
	}
	messages, err := m.history.Recent(ctx, scope, m.historyLimit)
	if err != nil {
		m.log.Warn("Room history unavailable, sending empty history", "room", roomID, "error", err)
	}

	session, ok := m.Session(connID)
	if !ok || !session.In(roomID) {
		m.log.Debug("Session left before history was delivered", "conn", connID, "room", roomID)
		return
	}
	m.dispatcher.EmitToConnection(connID, event.NewRoomHistory(messages))
	m.dispatcher.EmitToOthersInRoom(roomID, connID, event.NewUserJoined(name))
	m.dispatcher.EmitToRoom(roomID, event.NewUsersUpdate(m.registry.List(roomID)))
}

// persist appends through the history service. Invalid input is answered to
// the sender only and returned. A store failure is not returned: the message
// is stamped with the server clock and delivered anyway.
func (m *SessionManager) persist(ctx context.Context, connID domain.ConnID, author, text string, roomID domain.RoomID) (domain.Message, error) {
	message, err := m.history.Append(ctx, author, text, roomID)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrEmptyMessage), errors.Is(err, errors.ErrEmptyAuthor):
		m.log.Debug("Message rejected", "conn", connID, "room", roomID, "error", err)
		m.dispatcher.EmitToConnection(connID, event.NewError(err))
		return domain.Message{}, err
	default:
		m.log.Error("Message delivered but not persisted", "conn", connID, "room", roomID, "error", err)
		message.CreatedAt = m.now().UTC()
	}
	m.publish(event.MessagePosted{
		ID:        message.ID,
		Room:      message.EffectiveRoom(),
		Author:    message.Author,
		Content:   message.Content,
		At:        message.CreatedAt,
		Persisted: err == nil,
	})
	return message, nil
}

func (m *SessionManager) resolveRoom(ctx context.Context, roomID domain.RoomID) domain.Room {
	result := m.directory.Lookup(ctx, roomID)
	switch result.Status {
	case domain.RoomFound:
		return result.Room
	default:
		m.log.Info("Using transient room", "room", roomID, "reason", result.Status)
		return domain.FallbackRoom(roomID, m.now())
	}
}

// leaveLocked drops a name from a room unless another live session with the
// same name is still there. It reports whether the name left.
func (m *SessionManager) leaveLocked(connID domain.ConnID, roomID domain.RoomID, name string) bool {
	for otherID, other := range m.sessions {
		if otherID != connID && other.In(roomID) && other.Username == name {
			return false
		}
	}
	m.registry.Remove(roomID, name)
	return true
}

func (m *SessionManager) liveSession(connID domain.ConnID) (domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, err := m.liveSessionLocked(connID)
	if err != nil {
		return domain.Session{}, err
	}
	return *session, nil
}

func (m *SessionManager) liveSessionLocked(connID domain.ConnID) (*domain.Session, error) {
	session, ok := m.sessions[connID]
	if !ok {
		return nil, errors.ErrUnknownSession
	}
	if session.State == domain.Closed {
		return nil, errors.ErrSessionClosed
	}
	return session, nil
}

func (m *SessionManager) publish(evt event.DomainEvent) {
	if m.domainEvents == nil {
		return
	}
	select {
	case m.domainEvents <- evt:
	default:
		m.log.Warn("Domain event channel full, dropping event", "room", evt.RoomID())
	}
}
