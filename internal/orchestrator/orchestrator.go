// Package orchestrator is the room orchestrator (C6): the only caller of
// the engine (C2) and the component that turns its effects into wire
// events, persisted state, and rescheduled timers. Every mutation against
// a given room — client command, timer callback, or disconnect — is
// serialized through that room's actor (see actor.go), so two operations
// on the same room never run concurrently while operations on distinct
// rooms proceed in parallel.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"slaphard/internal/persistence"
	"slaphard/internal/protocol"
	"slaphard/internal/registry"
	"slaphard/internal/room"
	"slaphard/internal/roomstore"
)

// Sender delivers an envelope to one live socket; satisfied by the
// transport hub. The orchestrator never holds a socket's connection
// directly — only its id — so it has no transport-level dependency.
type Sender interface {
	Send(socketID string, env protocol.Envelope)
}

// Orchestrator wires the room store (C4), the durability journal (C5),
// the connection registry (C7), and a transport Sender together, and owns
// one roomActor per live room.
type Orchestrator struct {
	store    roomstore.Store
	journal  persistence.Journal
	registry *registry.Registry
	sender   Sender
	log      *logrus.Entry
	limiters *connectionLimiters

	mu     sync.Mutex
	actors map[string]*roomActor
}

// New builds an Orchestrator. log may be nil, in which case the standard
// logrus logger is used.
func New(store roomstore.Store, journal persistence.Journal, reg *registry.Registry, sender Sender, log *logrus.Entry) *Orchestrator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Orchestrator{
		store:    store,
		journal:  journal,
		registry: reg,
		sender:   sender,
		log:      log.WithField("component", "orchestrator"),
		limiters: newConnectionLimiters(),
		actors:   make(map[string]*roomActor),
	}
}

// actorFor returns the actor for roomID, creating one if it does not yet
// exist.
func (o *Orchestrator) actorFor(roomID string) *roomActor {
	o.mu.Lock()
	defer o.mu.Unlock()
	a, ok := o.actors[roomID]
	if !ok {
		a = newRoomActor(roomID)
		o.actors[roomID] = a
	}
	return a
}

// dropActor stops and forgets a room's actor, called once its room is
// deleted.
func (o *Orchestrator) dropActor(roomID string) {
	o.mu.Lock()
	a, ok := o.actors[roomID]
	delete(o.actors, roomID)
	o.mu.Unlock()
	if ok {
		a.Stop()
	}
}

// HandleDisconnect runs the disconnect path for a socket that has closed:
// it unbinds the socket, and if that was the user's last live connection,
// marks them disconnected in their room.
func (o *Orchestrator) HandleDisconnect(ctx context.Context, socketID string) {
	o.limiters.Forget(socketID)
	conn, ok := o.registry.Get(socketID)
	o.registry.Remove(socketID)
	if !ok || conn.RoomID == "" {
		return
	}
	roomID := conn.RoomID
	userID := conn.UserID
	a := o.actorFor(roomID)
	a.Submit(func() {
		o.onUserFullyDisconnected(ctx, a, roomID, userID)
	})
}

// onUserFullyDisconnected marks userID disconnected in roomID if they
// have no remaining live sockets, per spec.md §4.6 "the orchestrator
// waits for the connection set to become empty before marking
// connected=false".
func (o *Orchestrator) onUserFullyDisconnected(ctx context.Context, a *roomActor, roomID, userID string) {
	if o.registry.UserConnectionCount(userID) > 0 {
		return
	}
	rs, err := o.store.GetRoomByID(ctx, roomID)
	if err != nil {
		return
	}
	p := rs.PlayerByUserID(userID)
	if p == nil {
		return
	}
	p.Connected = false
	rs.UpdatedAt = nowFunc()
	rs.Version++

	if rs.Status == room.StatusLobby {
		o.removeFromLobby(ctx, a, &rs, userID)
		return
	}

	o.saveAndBroadcastRoom(ctx, rs)
}

// ListJoinableRooms exposes the room store's lobby-browser query to the
// transport layer, so /api/rooms never needs direct store access.
func (o *Orchestrator) ListJoinableRooms(ctx context.Context) ([]roomstore.RoomSummary, error) {
	return o.store.ListJoinableRooms(ctx)
}

// sendError emits an error envelope to one socket, optionally triggering
// a resync of room/game state when the code is in the recoverable set
// spec.md §7 names.
func (o *Orchestrator) sendError(ctx context.Context, socketID, code, message string) {
	o.sender.Send(socketID, protocol.NewEnvelope(protocol.EvtError, protocol.ErrorPayload{
		Code:    code,
		Message: message,
	}))
	if isRecoverableCode(code) {
		if conn, ok := o.registry.Get(socketID); ok && conn.RoomID != "" {
			o.resyncSocket(ctx, socketID, conn.RoomID, conn.UserID)
		}
	}
}

func isRecoverableCode(code string) bool {
	switch code {
	case "NOT_YOUR_TURN", "SLAP_WINDOW_ACTIVE", "NO_SLAP_WINDOW", "INVALID_EVENT_ID", "ALREADY_SLAPPED":
		return true
	default:
		return false
	}
}

// resyncSocket re-sends room.state and (if in game) game.state to one
// socket, without touching anything else.
func (o *Orchestrator) resyncSocket(ctx context.Context, socketID, roomID, userID string) {
	rs, err := o.store.GetRoomByID(ctx, roomID)
	if err != nil {
		return
	}
	o.sendRoomState(socketID, rs, userID)
	if rs.GameState != nil {
		o.sendGameState(socketID, rs, userID)
	}
}

// nowFunc is the wall-clock source for orchestrator bookkeeping
// timestamps (not gameplay timing, which always threads `now` explicitly
// into the engine).
var nowFunc = time.Now
