// Package persistence is the durability journal (C5): an audit trail of
// room lifecycle and match events, kept separate from roomstore (C4)
// because it answers a different question. roomstore answers "what is the
// current state of this room right now" and can be reconstructed from
// scratch at any time; Journal answers "what happened" and is append-only
// by design, even across room deletion.
package persistence

import (
	"context"
	"errors"
	"time"

	"slaphard/internal/room"
)

// ErrNotFound mirrors roomstore.ErrNotFound for journal lookups.
var ErrNotFound = errors.New("persistence: not found")

// MatchEvent is one row of the append-only match_events log: a single
// resolved engine event plus enough context to replay or audit a match
// without needing the live room.
type MatchEvent struct {
	MatchID    string    `json:"matchId"`
	Sequence   int64     `json:"sequence"`
	EventType  string    `json:"eventType"`
	Payload    []byte    `json:"payload"`
	ServerTime int64     `json:"serverTime"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Journal is the durability contract: a write-mostly log of room and
// match lifecycle events, independent of roomstore's live-state cache.
type Journal interface {
	// UpsertRoomMetadata records a room's existence and current lobby
	// membership; the orchestrator calls it after every successful room
	// save.
	UpsertRoomMetadata(ctx context.Context, r room.RoomState) error
	// WriteRoomSnapshot persists a point-in-time snapshot of a room. The
	// orchestrator does not call it; no snapshots are written during play.
	WriteRoomSnapshot(ctx context.Context, r room.RoomState) error
	// MarkRoomDeleted records that a room was torn down, without erasing
	// its history.
	MarkRoomDeleted(ctx context.Context, roomID string, at time.Time) error

	// StartMatch records the beginning of a match within a room.
	StartMatch(ctx context.Context, matchID, roomID string, playerUserIDs []string, startedAt time.Time) error
	// FinishMatch records a match's outcome.
	FinishMatch(ctx context.Context, matchID, winnerUserID string, finishedAt time.Time) error
	// AppendMatchEvent appends one resolved engine event to a match's log.
	AppendMatchEvent(ctx context.Context, e MatchEvent) error
}
