package runtime

import (
	"log/slog"
	"roomchat/contract"
	"roomchat/domain"
	"roomchat/domain/event"
	"sync"
)

// Dispatcher delivers outbound frames to connections. It never mutates
// session or presence state: room membership is asked to the Membership
// it is bound to.
// Delivery is at-most-once per call. A connection that is gone or too slow
// misses the frame and nothing is reported.
type Dispatcher struct {
	mu       sync.RWMutex
	log      *slog.Logger
	outboxes map[domain.ConnID]contract.Outbox // map connection -> outbox
	members  contract.Membership
}

func NewDispatcher(log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		log:      log,
		outboxes: make(map[domain.ConnID]contract.Outbox),
	}
}

// Bind sets the membership source. It must be called before any room emit.
func (d *Dispatcher) Bind(members contract.Membership) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.members = members
}

// Register attaches the outbox of a new connection.
func (d *Dispatcher) Register(connID domain.ConnID, outbox contract.Outbox) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.outboxes[connID] = outbox
}

// Unregister forgets a connection and closes its outbox.
func (d *Dispatcher) Unregister(connID domain.ConnID) {
	d.mu.Lock()
	outbox, ok := d.outboxes[connID]
	delete(d.outboxes, connID)
	d.mu.Unlock()

	if ok {
		outbox.Close()
	}
}

func (d *Dispatcher) EmitToRoom(roomID domain.RoomID, out event.Outbound) int {
	return d.emitTo(d.membersOf(roomID), "", out)
}

func (d *Dispatcher) EmitToOthersInRoom(roomID domain.RoomID, except domain.ConnID, out event.Outbound) int {
	return d.emitTo(d.membersOf(roomID), except, out)
}

func (d *Dispatcher) EmitToConnection(connID domain.ConnID, out event.Outbound) bool {
	return d.emitTo([]domain.ConnID{connID}, "", out) == 1
}

// EmitToAll reaches every registered connection, joined or not.
func (d *Dispatcher) EmitToAll(out event.Outbound) int {
	d.mu.RLock()
	targets := make([]domain.ConnID, 0, len(d.outboxes))
	for connID := range d.outboxes {
		targets = append(targets, connID)
	}
	d.mu.RUnlock()
	return d.emitTo(targets, "", out)
}

// Connections is the number of registered connections.
func (d *Dispatcher) Connections() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.outboxes)
}

func (d *Dispatcher) membersOf(roomID domain.RoomID) []domain.ConnID {
	d.mu.RLock()
	members := d.members
	d.mu.RUnlock()
	if members == nil {
		d.log.Warn("Dispatcher has no membership bound, dropping room emit", "room", roomID)
		return nil
	}
	return members.ConnectionsIn(roomID)
}

func (d *Dispatcher) emitTo(targets []domain.ConnID, except domain.ConnID, out event.Outbound) int {
	delivered := 0
	for _, connID := range targets {
		if connID == except {
			continue
		}
		d.mu.RLock()
		outbox, ok := d.outboxes[connID]
		d.mu.RUnlock()
		if !ok {
			d.log.Debug("Connection gone, event not delivered", "conn", connID, "event", out.Event)
			continue
		}
		if !outbox.Send(out) {
			d.log.Debug("Outbox full or closed, event dropped", "conn", connID, "event", out.Event)
			continue
		}
		delivered++
	}
	return delivered
}
