package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"slaphard/internal/persistence"
	"slaphard/internal/protocol"
	"slaphard/internal/registry"
	"slaphard/internal/roomstore"
)

// fakeSender records every envelope sent to each socket, for assertions.
type fakeSender struct {
	mu   sync.Mutex
	sent map[string][]protocol.Envelope
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[string][]protocol.Envelope)}
}

func (f *fakeSender) Send(socketID string, env protocol.Envelope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[socketID] = append(f.sent[socketID], env)
}

func (f *fakeSender) last(socketID string) (protocol.Envelope, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.sent[socketID]
	if len(msgs) == 0 {
		return protocol.Envelope{}, false
	}
	return msgs[len(msgs)-1], true
}

func (f *fakeSender) count(socketID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent[socketID])
}

func (f *fakeSender) typesFor(socketID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent[socketID]))
	for i, e := range f.sent[socketID] {
		out[i] = e.Type
	}
	return out
}

func newTestOrchestrator() (*Orchestrator, *fakeSender) {
	sender := newFakeSender()
	o := New(roomstore.NewMemoryStore(), persistence.NewMemoryJournal(), registry.New(), sender, nil)
	return o, sender
}

// waitIdle blocks until every job submitted to roomID's actor before this
// call has finished running, by submitting a job of its own and waiting
// for it to execute.
func waitIdle(o *Orchestrator, roomID string) {
	done := make(chan struct{})
	o.actorFor(roomID).Submit(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		panic("waitIdle timed out; actor appears stuck")
	}
}

func TestRoomCreateAndJoinFlow(t *testing.T) {
	o, sender := newTestOrchestrator()
	ctx := context.Background()

	o.Dispatch(ctx, "s1", "u1", protocol.NewEnvelope(protocol.CmdRoomCreate, protocol.RoomCreatePayload{DisplayName: "Alice"}))

	conn, ok := waitForRegistration(o, "s1")
	if !ok {
		t.Fatal("expected s1 to be registered after room.create")
	}
	roomID := conn.RoomID
	waitIdle(o, roomID)

	env, ok := sender.last("s1")
	if !ok || env.Type != protocol.EvtRoomState {
		t.Fatalf("expected a room.state envelope for s1, got %+v ok=%v", env, ok)
	}
	payload := env.Payload.(protocol.RoomStatePayload)
	if len(payload.Room.Players) != 1 || payload.Room.HostUserID != "u1" {
		t.Fatalf("expected single host player, got %+v", payload.Room)
	}
	roomCode := payload.Room.RoomCode

	o.Dispatch(ctx, "s2", "u2", protocol.NewEnvelope(protocol.CmdRoomJoin, protocol.RoomJoinPayload{
		RoomCode:    roomCode,
		DisplayName: "Bob",
	}))
	waitIdle(o, roomID)

	env2, ok := sender.last("s1")
	if !ok || env2.Type != protocol.EvtRoomState {
		t.Fatalf("expected host to receive updated room.state, got %+v", env2)
	}
	payload2 := env2.Payload.(protocol.RoomStatePayload)
	if len(payload2.Room.Players) != 2 {
		t.Fatalf("expected 2 players after join, got %d", len(payload2.Room.Players))
	}
}

func TestLobbyStartRequiresTwoPlayers(t *testing.T) {
	o, sender := newTestOrchestrator()
	ctx := context.Background()

	o.Dispatch(ctx, "s1", "u1", protocol.NewEnvelope(protocol.CmdRoomCreate, protocol.RoomCreatePayload{DisplayName: "Alice"}))
	conn, _ := waitForRegistration(o, "s1")
	waitIdle(o, conn.RoomID)

	o.Dispatch(ctx, "s1", "u1", protocol.NewEnvelope(protocol.CmdLobbyStart, protocol.LobbyStartPayload{}))
	waitIdle(o, conn.RoomID)

	env, ok := sender.last("s1")
	if !ok || env.Type != protocol.EvtError {
		t.Fatalf("expected an error for starting with 1 player, got %+v", env)
	}
	errPayload := env.Payload.(protocol.ErrorPayload)
	if errPayload.Code != "NOT_IN_LOBBY" {
		t.Fatalf("expected NOT_IN_LOBBY, got %s", errPayload.Code)
	}
}

func TestFullGameFlowCreatesGameState(t *testing.T) {
	o, sender := newTestOrchestrator()
	ctx := context.Background()

	o.Dispatch(ctx, "s1", "u1", protocol.NewEnvelope(protocol.CmdRoomCreate, protocol.RoomCreatePayload{DisplayName: "Alice"}))
	conn1, _ := waitForRegistration(o, "s1")
	roomID := conn1.RoomID
	waitIdle(o, roomID)

	env, _ := sender.last("s1")
	roomCode := env.Payload.(protocol.RoomStatePayload).Room.RoomCode

	o.Dispatch(ctx, "s2", "u2", protocol.NewEnvelope(protocol.CmdRoomJoin, protocol.RoomJoinPayload{RoomCode: roomCode, DisplayName: "Bob"}))
	waitIdle(o, roomID)

	o.Dispatch(ctx, "s1", "u1", protocol.NewEnvelope(protocol.CmdLobbyStart, protocol.LobbyStartPayload{}))
	waitIdle(o, roomID)

	env2, ok := sender.last("s1")
	if !ok || env2.Type != protocol.EvtGameState {
		t.Fatalf("expected game.state after lobby.start, got %+v", env2)
	}
	view := env2.Payload.(protocol.GameStatePayload)
	if view.Snapshot.Status != "IN_GAME" {
		t.Fatalf("expected status IN_GAME, got %s", view.Snapshot.Status)
	}

	o.Dispatch(ctx, "s1", "u1", protocol.NewEnvelope(protocol.CmdGameFlip, protocol.GameFlipPayload{ClientSeq: 1, ClientTime: 1000}))
	waitIdle(o, roomID)

	types := sender.typesFor("s1")
	if len(types) == 0 || types[len(types)-1] != protocol.EvtGameState {
		t.Fatalf("expected a trailing game.state after flip, got %v", types)
	}
}

func TestPingRepliesWithPong(t *testing.T) {
	o, sender := newTestOrchestrator()
	ctx := context.Background()
	o.HandlePing("s1", protocol.PingPayload{ClientTime: 555})
	env, ok := sender.last("s1")
	if !ok || env.Type != protocol.EvtPong {
		t.Fatalf("expected pong, got %+v", env)
	}
	pong := env.Payload.(protocol.PongPayload)
	if pong.ClientTimeEcho != 555 {
		t.Fatalf("expected echoed clientTime 555, got %d", pong.ClientTimeEcho)
	}
}

// waitForRegistration polls the registry briefly, since room.create binds
// the socket asynchronously on the room's actor goroutine.
func waitForRegistration(o *Orchestrator, socketID string) (connT, bool) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if conn, ok := o.registry.Get(socketID); ok && conn.RoomID != "" {
			return connT{RoomID: conn.RoomID}, true
		}
		time.Sleep(time.Millisecond)
	}
	return connT{}, false
}

type connT struct {
	RoomID string
}
