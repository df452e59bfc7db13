// Package protocol defines the wire contract between a client and the
// room orchestrator: inbound command names and payloads, outbound event
// names and payloads, and the envelope both travel in.
package protocol

import (
	"time"

	"slaphard/internal/cards"
	"slaphard/internal/engine"
	"slaphard/internal/projector"
	"slaphard/internal/room"
)

// Inbound command names.
const (
	CmdRoomCreate  = "room.create"
	CmdRoomJoin    = "room.join"
	CmdRoomLeave   = "room.leave"
	CmdLobbyReady  = "lobby.ready"
	CmdLobbyKick   = "lobby.kick"
	CmdLobbyStart  = "lobby.start"
	CmdGameStop    = "game.stop"
	CmdGameFlip    = "game.flip"
	CmdGameSlap    = "game.slap"
	CmdPing        = "ping"
)

// Outbound event names.
const (
	EvtRoomState          = "room.state"
	EvtRoomKicked         = "room.kicked"
	EvtGameState          = "game.state"
	EvtGameDelta          = "game.delta"
	EvtSlapWindowOpen     = "game.slapWindowOpen"
	EvtSlapResult         = "game.slapResult"
	EvtPenalty            = "penalty"
	EvtError              = "error"
	EvtPong               = "pong"
)

// Envelope is the outer shape of every message in both directions: a
// discriminator plus an opaque payload, mirroring the teacher's
// type+payload WSMessage idiom.
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// NewEnvelope wraps payload under msgType.
func NewEnvelope(msgType string, payload interface{}) Envelope {
	return Envelope{Type: msgType, Payload: payload}
}

// Inbound payloads.

type RoomCreatePayload struct {
	DisplayName string `json:"displayName"`
}

type RoomJoinPayload struct {
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
	UserID      string `json:"userId,omitempty"`
}

type RoomLeavePayload struct{}

type LobbyReadyPayload struct {
	Ready bool `json:"ready"`
}

type LobbyKickPayload struct {
	UserID string `json:"userId"`
}

type LobbyStartPayload struct{}

type GameStopPayload struct{}

type GameFlipPayload struct {
	ClientSeq  uint64 `json:"clientSeq"`
	ClientTime int64  `json:"clientTime"`
}

type GameSlapPayload struct {
	EventID    string       `json:"eventId"`
	Gesture    *cards.Card  `json:"gesture,omitempty"`
	ClientSeq  uint64       `json:"clientSeq"`
	ClientTime int64        `json:"clientTime"`
	OffsetMs   int64        `json:"offsetMs"`
	RTTMs      int64        `json:"rttMs"`
}

type PingPayload struct {
	ClientTime int64 `json:"clientTime"`
}

// Outbound payloads.

type RoomStatePayload struct {
	Room   room.RoomState `json:"room"`
	MeUserID string       `json:"meUserId"`
}

type RoomKickedPayload struct {
	RoomCode string `json:"roomCode"`
	ByUserID string `json:"byUserId"`
}

type GameStatePayload struct {
	Snapshot   projector.GameStateView `json:"snapshot"`
	ServerTime int64                   `json:"serverTime"`
	Version    int64                   `json:"version"`
}

type SlapWindowOpenPayload struct {
	EventID            string      `json:"eventId"`
	Reason             string      `json:"reason"`
	ActionCard         *cards.Card `json:"actionCard,omitempty"`
	StartServerTime    int64       `json:"startServerTime"`
	DeadlineServerTime int64       `json:"deadlineServerTime"`
	SlapWindowMs       int64       `json:"slapWindowMs"`
}

type SlapResultPayload struct {
	EventID        string   `json:"eventId"`
	OrderedUserIDs []string `json:"orderedUserIds"`
	LoserUserID    string   `json:"loserUserId"`
	Reason         string   `json:"reason"`
	PileTaken      int      `json:"pileTaken"`
}

type PenaltyPayload struct {
	UserID      string `json:"userId"`
	PenaltyType string `json:"type"`
	PileTaken   int    `json:"pileTaken"`
}

type ErrorPayload struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type PongPayload struct {
	ServerTime     int64 `json:"serverTime"`
	ClientTimeEcho int64 `json:"clientTimeEcho"`
}

// SlapWindowOpenFromEffect converts an engine effect into its wire
// payload.
func SlapWindowOpenFromEffect(e engine.SlapWindowOpenEffect) SlapWindowOpenPayload {
	return SlapWindowOpenPayload{
		EventID:            e.EventID,
		Reason:             string(e.Reason),
		ActionCard:         e.ActionCard,
		StartServerTime:    e.StartServerTime,
		DeadlineServerTime: e.DeadlineServerTime,
		SlapWindowMs:       e.SlapWindowMs,
	}
}

// SlapResultFromEffect converts an engine effect into its wire payload.
func SlapResultFromEffect(e engine.SlapResultEffect) SlapResultPayload {
	return SlapResultPayload{
		EventID:        e.EventID,
		OrderedUserIDs: e.OrderedUserIDs,
		LoserUserID:    e.LoserUserID,
		Reason:         string(e.Reason),
		PileTaken:      e.PileTaken,
	}
}

// PenaltyFromEffect converts an engine effect into its wire payload.
func PenaltyFromEffect(e engine.PenaltyEffect) PenaltyPayload {
	return PenaltyPayload{
		UserID:      e.UserID,
		PenaltyType: string(e.PenaltyType),
		PileTaken:   e.PileTaken,
	}
}

// NowMillis returns the current wall-clock time in Unix milliseconds, for
// building payloads by hand without importing time directly. The
// orchestrator stamps pong and game.state with its own clock, not this one.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
