package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"slaphard/internal/engine"
	"slaphard/internal/projector"
	"slaphard/internal/protocol"
	"slaphard/internal/room"
)

// broadcastToRoom sends env to every live socket of every member of rs.
func (o *Orchestrator) broadcastToRoom(rs room.RoomState, env protocol.Envelope) {
	for _, p := range rs.Players {
		for _, socketID := range o.registry.SocketsForUser(p.UserID) {
			o.sender.Send(socketID, env)
		}
	}
}

// sendRoomState emits a room.state snapshot to one socket.
func (o *Orchestrator) sendRoomState(socketID string, rs room.RoomState, meUserID string) {
	o.sender.Send(socketID, protocol.NewEnvelope(protocol.EvtRoomState, protocol.RoomStatePayload{
		Room:     rs,
		MeUserID: meUserID,
	}))
}

// sendGameState emits a projected game.state snapshot to one socket.
func (o *Orchestrator) sendGameState(socketID string, rs room.RoomState, meUserID string) {
	if rs.GameState == nil {
		return
	}
	view := projector.Project(*rs.GameState, meUserID)
	o.sender.Send(socketID, protocol.NewEnvelope(protocol.EvtGameState, protocol.GameStatePayload{
		Snapshot:   view,
		ServerTime: nowFunc().UnixMilli(),
		Version:    rs.GameState.Version,
	}))
}

// broadcastRoomState sends room.state (and game.state, if in game) to
// every member, each seeing their own hand.
func (o *Orchestrator) broadcastRoomState(rs room.RoomState) {
	for _, p := range rs.Players {
		for _, socketID := range o.registry.SocketsForUser(p.UserID) {
			o.sendRoomState(socketID, rs, p.UserID)
			if rs.GameState != nil {
				o.sendGameState(socketID, rs, p.UserID)
			}
		}
	}
}

// saveAndBroadcastRoom persists rs and pushes fresh snapshots to every
// member, per spec.md §4.6 step 5 "Reproject via C3 and emit
// per-recipient snapshots".
func (o *Orchestrator) saveAndBroadcastRoom(ctx context.Context, rs room.RoomState) {
	if err := o.store.SaveRoom(ctx, rs); err != nil {
		o.log.WithError(err).WithField("room_id", rs.RoomID).Error("failed to save room")
		return
	}
	_ = o.journal.UpsertRoomMetadata(ctx, rs)
	o.broadcastRoomState(rs)
}

// HandleRoomCreate creates a new room with userID (freshly minted if
// empty) as host and sole member.
func (o *Orchestrator) HandleRoomCreate(ctx context.Context, socketID, userID string, p protocol.RoomCreatePayload) {
	if userID == "" {
		userID = uuid.NewString()
	}
	if !validDisplayName(p.DisplayName) {
		o.sendError(ctx, socketID, "INVALID_NAME", "display name must be 2-24 characters")
		return
	}

	code, err := room.GenerateRoomCode(func(c string) (bool, error) {
		return o.store.RoomCodeExists(ctx, c)
	})
	if err != nil {
		o.sendError(ctx, socketID, "INTERNAL_ERROR", "failed to allocate a room code")
		return
	}

	rs := room.RoomState{
		RoomID:     uuid.NewString(),
		RoomCode:   code,
		Status:     room.StatusLobby,
		HostUserID: userID,
		Settings:   room.DefaultSettings(),
		Players: []room.PublicPlayer{{
			UserID:      userID,
			DisplayName: p.DisplayName,
			SeatIndex:   0,
			Connected:   true,
			IsHost:      true,
		}},
		Version:   1,
		CreatedAt: nowFunc(),
		UpdatedAt: nowFunc(),
	}

	a := o.actorFor(rs.RoomID)
	a.Submit(func() {
		o.registry.Add(socketID, userID)
		o.registry.BindRoom(socketID, rs.RoomID)
		_ = o.store.SetUserRoom(ctx, userID, rs.RoomID)
		o.saveAndBroadcastRoom(ctx, rs)
	})
}

// HandleRoomJoin adds a member to an existing room, or reconnects an
// existing seat if userID matches a current player.
func (o *Orchestrator) HandleRoomJoin(ctx context.Context, socketID, userID string, p protocol.RoomJoinPayload) {
	if p.UserID != "" {
		userID = p.UserID
	}
	if userID == "" {
		userID = uuid.NewString()
	}
	if !validDisplayName(p.DisplayName) {
		o.sendError(ctx, socketID, "INVALID_NAME", "display name must be 2-24 characters")
		return
	}

	rs, err := o.store.GetRoomByCode(ctx, p.RoomCode)
	if err != nil {
		o.sendError(ctx, socketID, "ROOM_NOT_FOUND", "no room with that code")
		return
	}

	a := o.actorFor(rs.RoomID)
	a.Submit(func() {
		o.registry.Add(socketID, userID)
		o.registry.BindRoom(socketID, rs.RoomID)
		_ = o.store.SetUserRoom(ctx, userID, rs.RoomID)

		cur, err := o.store.GetRoomByID(ctx, rs.RoomID)
		if err != nil {
			o.sendError(ctx, socketID, "ROOM_NOT_FOUND", "room no longer exists")
			return
		}

		if existing := cur.PlayerByUserID(userID); existing != nil {
			existing.Connected = true
			existing.DisplayName = p.DisplayName
			cur.UpdatedAt = nowFunc()
			cur.Version++
			o.saveAndBroadcastRoom(ctx, cur)
			return
		}

		if cur.Status != room.StatusLobby {
			o.sendError(ctx, socketID, "NOT_IN_LOBBY", "room is not accepting new players")
			return
		}
		if len(cur.Players) >= cur.Settings.MaxPlayers {
			o.sendError(ctx, socketID, "ROOM_FULL", "room is full")
			return
		}

		cur.Players = append(cur.Players, room.PublicPlayer{
			UserID:      userID,
			DisplayName: p.DisplayName,
			SeatIndex:   len(cur.Players),
			Connected:   true,
		})
		cur.UpdatedAt = nowFunc()
		cur.Version++
		o.saveAndBroadcastRoom(ctx, cur)
	})
}

// HandleRoomLeave removes userID from their current room.
func (o *Orchestrator) HandleRoomLeave(ctx context.Context, socketID, userID string) {
	conn, ok := o.registry.Get(socketID)
	if !ok || conn.RoomID == "" {
		return
	}
	roomID := conn.RoomID
	a := o.actorFor(roomID)
	a.Submit(func() {
		rs, err := o.store.GetRoomByID(ctx, roomID)
		if err != nil {
			return
		}
		o.removeFromLobby(ctx, a, &rs, userID)
		o.registry.UnbindRoom(socketID)
		_ = o.store.ClearUserRoom(ctx, userID)
	})
}

// removeFromLobby removes userID from rs, deletes the room if that
// leaves it empty, otherwise reseats and re-hosts as needed and
// broadcasts the result.
func (o *Orchestrator) removeFromLobby(ctx context.Context, a *roomActor, rs *room.RoomState, userID string) {
	idx := -1
	for i, p := range rs.Players {
		if p.UserID == userID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	wasHost := rs.Players[idx].UserID == rs.HostUserID
	rs.Players = append(rs.Players[:idx], rs.Players[idx+1:]...)

	if len(rs.Players) == 0 {
		_ = o.store.DeleteRoom(ctx, rs.RoomID)
		_ = o.journal.MarkRoomDeleted(ctx, rs.RoomID, nowFunc())
		o.dropActor(rs.RoomID)
		return
	}

	rs.ReseatDense()
	if wasHost {
		rs.HostUserID = rs.Players[0].UserID
		rs.Players[0].IsHost = true
	}
	rs.UpdatedAt = nowFunc()
	rs.Version++
	o.saveAndBroadcastRoom(ctx, *rs)
}

// HandleLobbyReady toggles userID's ready flag while in LOBBY.
func (o *Orchestrator) HandleLobbyReady(ctx context.Context, socketID, userID string, p protocol.LobbyReadyPayload) {
	o.withRoom(ctx, socketID, func(rs *room.RoomState) {
		if rs.Status != room.StatusLobby {
			o.sendError(ctx, socketID, "NOT_IN_LOBBY", "room is not in the lobby")
			return
		}
		player := rs.PlayerByUserID(userID)
		if player == nil {
			return
		}
		player.Ready = p.Ready
		rs.UpdatedAt = nowFunc()
		rs.Version++
		o.saveAndBroadcastRoom(ctx, *rs)
	})
}

// HandleLobbyKick lets the host remove a non-ready, non-self lobby
// member.
func (o *Orchestrator) HandleLobbyKick(ctx context.Context, socketID, userID string, p protocol.LobbyKickPayload) {
	o.withRoom(ctx, socketID, func(rs *room.RoomState) {
		if userID != rs.HostUserID {
			o.sendError(ctx, socketID, "NOT_HOST", "only the host may kick")
			return
		}
		if p.UserID == userID {
			o.sendError(ctx, socketID, "INVALID_TARGET", "host cannot kick themself")
			return
		}
		target := rs.PlayerByUserID(p.UserID)
		if target == nil || target.Ready {
			o.sendError(ctx, socketID, "INVALID_TARGET", "target is not kickable")
			return
		}
		for _, targetSocket := range o.registry.SocketsForUser(p.UserID) {
			o.sender.Send(targetSocket, protocol.NewEnvelope(protocol.EvtRoomKicked, protocol.RoomKickedPayload{
				RoomCode: rs.RoomCode,
				ByUserID: userID,
			}))
			o.registry.UnbindRoom(targetSocket)
		}
		_ = o.store.ClearUserRoom(ctx, p.UserID)
		o.removeFromLobby(ctx, o.actorFor(rs.RoomID), rs, p.UserID)
	})
}

// HandleLobbyStart lets the host start the match once n >= 2.
func (o *Orchestrator) HandleLobbyStart(ctx context.Context, socketID, userID string) {
	o.withRoom(ctx, socketID, func(rs *room.RoomState) {
		if userID != rs.HostUserID {
			o.sendError(ctx, socketID, "NOT_HOST", "only the host may start the game")
			return
		}
		if rs.Status != room.StatusLobby {
			o.sendError(ctx, socketID, "NOT_IN_LOBBY", "room is not in the lobby")
			return
		}
		if len(rs.Players) < 2 {
			o.sendError(ctx, socketID, "NOT_IN_LOBBY", "need at least 2 players")
			return
		}

		players := make([]engine.PlayerInit, len(rs.Players))
		for i, p := range rs.Players {
			players[i] = engine.PlayerInit{UserID: p.UserID, DisplayName: p.DisplayName, Connected: p.Connected}
		}
		gs, err := engine.NewInitialState(engine.NewGameParams{
			Players: players,
			Shuffle: true,
			Config:  rs.Settings.EngineConfig(),
		})
		if err != nil {
			o.sendError(ctx, socketID, "INTERNAL_ERROR", "failed to start game")
			return
		}

		rs.Status = room.StatusInGame
		rs.GameState = &gs
		rs.UpdatedAt = nowFunc()
		rs.Version++

		matchID := uuid.NewString()
		playerIDs := make([]string, len(rs.Players))
		for i, p := range rs.Players {
			playerIDs[i] = p.UserID
		}
		_ = o.journal.StartMatch(ctx, matchID, rs.RoomID, playerIDs, nowFunc())

		o.saveAndBroadcastRoom(ctx, *rs)
		o.rescheduleTimer(ctx, rs.RoomID, *rs)
	})
}

// HandleGameStop lets the host end an in-progress match early.
func (o *Orchestrator) HandleGameStop(ctx context.Context, socketID, userID string) {
	o.withRoom(ctx, socketID, func(rs *room.RoomState) {
		if userID != rs.HostUserID {
			o.sendError(ctx, socketID, "NOT_HOST", "only the host may stop the game")
			return
		}
		if rs.Status != room.StatusInGame {
			o.sendError(ctx, socketID, "NOT_IN_GAME", "no match in progress")
			return
		}
		o.actorFor(rs.RoomID).ClearTimer()
		rs.Status = room.StatusLobby
		rs.GameState = nil
		for i := range rs.Players {
			rs.Players[i].Ready = false
		}
		rs.UpdatedAt = nowFunc()
		rs.Version++
		o.saveAndBroadcastRoom(ctx, *rs)
	})
}

// withRoom resolves socketID's current room and submits a job to that
// room's actor which loads the room fresh and hands it to fn; fn therefore
// runs on the actor goroutine, serialized with every other job for the
// room, with no further locking needed here.
func (o *Orchestrator) withRoom(ctx context.Context, socketID string, fn func(rs *room.RoomState)) {
	conn, ok := o.registry.Get(socketID)
	if !ok || conn.RoomID == "" {
		o.sendError(ctx, socketID, "ROOM_NOT_FOUND", "not currently in a room")
		return
	}
	a := o.actorFor(conn.RoomID)
	a.Submit(func() {
		rs, err := o.store.GetRoomByID(ctx, conn.RoomID)
		if err != nil {
			o.sendError(ctx, socketID, "ROOM_NOT_FOUND", "room no longer exists")
			return
		}
		fn(&rs)
	})
}

func validDisplayName(name string) bool {
	return len(name) >= 2 && len(name) <= 24
}
