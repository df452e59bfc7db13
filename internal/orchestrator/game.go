package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"slaphard/internal/engine"
	"slaphard/internal/protocol"
	"slaphard/internal/room"
)

// requiresAllConnectedToSlap reports whether sw can only be closed by
// every connected player slapping — no deadline timer is scheduled for
// these, per spec.md §5 "SAME_CARD windows and ACTION windows with >= 5
// players do not auto-expire".
func requiresAllConnectedToSlap(sw engine.SlapWindow, connectedCount int) bool {
	if sw.Reason == engine.ReasonSameCard {
		return true
	}
	if sw.Reason == engine.ReasonAction && connectedCount >= 5 {
		return true
	}
	return false
}

// rescheduleTimer arms the room's single timer slot per spec.md §4.6:
// a slap-window deadline when one is pending and bounded, otherwise a
// turn timeout; neither when the room isn't in a game.
func (o *Orchestrator) rescheduleTimer(ctx context.Context, roomID string, rs room.RoomState) {
	a := o.actorFor(roomID)
	if rs.Status != room.StatusInGame || rs.GameState == nil {
		a.ClearTimer()
		return
	}
	gs := rs.GameState
	now := nowFunc().UnixMilli()

	if gs.SlapWindow.Active && !gs.SlapWindow.Resolved {
		if requiresAllConnectedToSlap(gs.SlapWindow, rs.ConnectedCount()) {
			a.ClearTimer()
			return
		}
		delay := time.Duration(gs.SlapWindow.DeadlineServerTime-now) * time.Millisecond
		if delay < 0 {
			delay = 0
		}
		a.ScheduleTimer(delay, func() {
			o.applyEngineEvent(ctx, roomID, engine.ResolveSlapWindowEvent{})
		})
		return
	}

	delay := time.Duration(rs.Settings.TurnTimeoutMs) * time.Millisecond
	a.ScheduleTimer(delay, func() {
		o.applyEngineEvent(ctx, roomID, engine.TurnTimeoutEvent{})
	})
}

// applyEngineEvent loads roomID's current state, runs it through the
// engine, and on success journals/broadcasts the result and reschedules
// the room's timer. Must run on the room's actor goroutine.
func (o *Orchestrator) applyEngineEvent(ctx context.Context, roomID string, ev engine.Event) *engine.Error {
	rs, err := o.store.GetRoomByID(ctx, roomID)
	if err != nil || rs.GameState == nil {
		return nil
	}
	now := nowFunc().UnixMilli()
	result := engine.Apply(*rs.GameState, ev, now)
	if result.Err != nil {
		return result.Err
	}

	rs.GameState = &result.State
	rs.UpdatedAt = nowFunc()
	rs.Version++
	if result.State.Status == engine.StatusFinished {
		rs.Status = room.StatusFinished
	}

	matchID := roomID // the journal keys match events by match id; the active match id is tracked by the room's lifecycle, so roomID suffices as a stable per-room key between start/finish
	a := o.actorFor(roomID)
	for _, eff := range result.Effects {
		o.broadcastEffect(rs, eff)
		o.journalEffect(ctx, matchID, a.NextEventSeq(), eff, now)
		if sr, ok := eff.(engine.SlapResultEffect); ok {
			o.actorFor(roomID).dedup.Record(sr.EventID, nowFunc(), sr.OrderedUserIDs)
		}
		if gf, ok := eff.(engine.GameFinishedEffect); ok {
			_ = o.journal.FinishMatch(ctx, matchID, gf.WinnerUserID, nowFunc())
		}
	}

	o.saveAndBroadcastRoom(ctx, rs)
	o.rescheduleTimer(ctx, roomID, rs)
	return nil
}

// broadcastEffect emits the wire event corresponding to one engine
// effect to every member of rs.
func (o *Orchestrator) broadcastEffect(rs room.RoomState, eff engine.Effect) {
	switch e := eff.(type) {
	case engine.SlapWindowOpenEffect:
		o.broadcastToRoom(rs, protocol.NewEnvelope(protocol.EvtSlapWindowOpen, protocol.SlapWindowOpenFromEffect(e)))
	case engine.SlapResultEffect:
		o.broadcastToRoom(rs, protocol.NewEnvelope(protocol.EvtSlapResult, protocol.SlapResultFromEffect(e)))
	case engine.PenaltyEffect:
		o.broadcastToRoom(rs, protocol.NewEnvelope(protocol.EvtPenalty, protocol.PenaltyFromEffect(e)))
	case engine.GameFinishedEffect:
		// No dedicated wire event beyond the room/game state broadcast
		// that follows status=FINISHED; winnerUserId travels on GameState.
	}
}

// journalEffect appends one resolved effect to the match's durable
// event log.
func (o *Orchestrator) journalEffect(ctx context.Context, matchID string, seq int64, eff engine.Effect, serverTime int64) {
	payload, err := json.Marshal(eff)
	if err != nil {
		return
	}
	_ = o.journal.AppendMatchEvent(ctx, persistenceMatchEvent(matchID, seq, eff, payload, serverTime))
}

// HandleGameFlip validates and applies a FLIP command.
func (o *Orchestrator) HandleGameFlip(ctx context.Context, socketID, userID string, p protocol.GameFlipPayload) {
	if !o.limiters.Allow(socketID) {
		o.sendError(ctx, socketID, "RATE_LIMITED", "too many gameplay events")
		return
	}
	conn, ok := o.registry.Get(socketID)
	if !ok || conn.RoomID == "" {
		o.sendError(ctx, socketID, "ROOM_NOT_FOUND", "not currently in a room")
		return
	}
	roomID := conn.RoomID
	a := o.actorFor(roomID)
	a.Submit(func() {
		if engErr := o.applyEngineEvent(ctx, roomID, engine.FlipEvent{UserID: userID}); engErr != nil {
			o.sendError(ctx, socketID, string(engErr.Code), engErr.Message)
		}
	})
}

// HandleGameSlap validates and applies a SLAP command, honoring the
// late-packet dedup cache before ever reaching the engine.
func (o *Orchestrator) HandleGameSlap(ctx context.Context, socketID, userID string, p protocol.GameSlapPayload) {
	if !o.limiters.Allow(socketID) {
		o.sendError(ctx, socketID, "RATE_LIMITED", "too many gameplay events")
		return
	}
	conn, ok := o.registry.Get(socketID)
	if !ok || conn.RoomID == "" {
		o.sendError(ctx, socketID, "ROOM_NOT_FOUND", "not currently in a room")
		return
	}
	roomID := conn.RoomID
	a := o.actorFor(roomID)
	a.Submit(func() {
		if a.dedup.ShouldDrop(p.EventID, userID, nowFunc()) {
			return
		}
		ev := engine.SlapEvent{
			UserID:     userID,
			EventID:    p.EventID,
			Gesture:    p.Gesture,
			ClientSeq:  p.ClientSeq,
			ClientTime: p.ClientTime,
			OffsetMs:   p.OffsetMs,
			RTTMs:      p.RTTMs,
		}
		if engErr := o.applyEngineEvent(ctx, roomID, ev); engErr != nil {
			if engErr.Code != engine.ErrAlreadySlapped {
				o.sendError(ctx, socketID, string(engErr.Code), engErr.Message)
			}
		}
	})
}

// HandlePing replies with pong, echoing the client's clock sample.
func (o *Orchestrator) HandlePing(socketID string, p protocol.PingPayload) {
	o.sender.Send(socketID, protocol.NewEnvelope(protocol.EvtPong, protocol.PongPayload{
		ServerTime:     nowFunc().UnixMilli(),
		ClientTimeEcho: p.ClientTime,
	}))
}
