package orchestrator

import (
	"context"
	"encoding/json"

	"slaphard/internal/protocol"
)

// Dispatch decodes an inbound envelope's payload for its declared type
// and routes it to the matching command handler. socketID identifies the
// live connection; userID is the identity the transport layer has
// already attached to that socket (empty only for room.create/room.join,
// which may mint one).
func (o *Orchestrator) Dispatch(ctx context.Context, socketID, userID string, env protocol.Envelope) {
	raw, err := json.Marshal(env.Payload)
	if err != nil {
		o.sendError(ctx, socketID, "INTERNAL_ERROR", "malformed payload")
		return
	}

	switch env.Type {
	case protocol.CmdRoomCreate:
		var p protocol.RoomCreatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			o.sendError(ctx, socketID, "INVALID_NAME", "malformed room.create payload")
			return
		}
		o.HandleRoomCreate(ctx, socketID, userID, p)

	case protocol.CmdRoomJoin:
		var p protocol.RoomJoinPayload
		if err := json.Unmarshal(raw, &p); err != nil || len(p.RoomCode) != 6 {
			o.sendError(ctx, socketID, "ROOM_NOT_FOUND", "malformed room.join payload")
			return
		}
		o.HandleRoomJoin(ctx, socketID, userID, p)

	case protocol.CmdRoomLeave:
		o.HandleRoomLeave(ctx, socketID, userID)

	case protocol.CmdLobbyReady:
		var p protocol.LobbyReadyPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			o.sendError(ctx, socketID, "INTERNAL_ERROR", "malformed lobby.ready payload")
			return
		}
		o.HandleLobbyReady(ctx, socketID, userID, p)

	case protocol.CmdLobbyKick:
		var p protocol.LobbyKickPayload
		if err := json.Unmarshal(raw, &p); err != nil || p.UserID == "" {
			o.sendError(ctx, socketID, "INVALID_TARGET", "malformed lobby.kick payload")
			return
		}
		o.HandleLobbyKick(ctx, socketID, userID, p)

	case protocol.CmdLobbyStart:
		o.HandleLobbyStart(ctx, socketID, userID)

	case protocol.CmdGameStop:
		o.HandleGameStop(ctx, socketID, userID)

	case protocol.CmdGameFlip:
		var p protocol.GameFlipPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			o.sendError(ctx, socketID, "INTERNAL_ERROR", "malformed game.flip payload")
			return
		}
		o.HandleGameFlip(ctx, socketID, userID, p)

	case protocol.CmdGameSlap:
		var p protocol.GameSlapPayload
		if err := json.Unmarshal(raw, &p); err != nil || p.EventID == "" {
			o.sendError(ctx, socketID, "INVALID_EVENT_ID", "malformed game.slap payload")
			return
		}
		o.HandleGameSlap(ctx, socketID, userID, p)

	case protocol.CmdPing:
		var p protocol.PingPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return
		}
		o.HandlePing(socketID, p)

	default:
		o.sendError(ctx, socketID, "INTERNAL_ERROR", "unrecognized command type")
	}
}
