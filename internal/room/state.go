// Package room defines the domain types the orchestrator (C6) and the room
// store (C4) operate on: RoomState, its public player list, and per-room
// settings. It holds no behavior beyond small invariant-preserving helpers;
// the engine package owns all gameplay rules.
package room

import (
	"time"

	"slaphard/internal/engine"
)

// Status is a room's lobby/match lifecycle phase.
type Status string

const (
	StatusLobby    Status = "LOBBY"
	StatusInGame   Status = "IN_GAME"
	StatusFinished Status = "FINISHED"
)

// PublicPlayer is a room member as seen in lobby/room broadcasts —
// independent of whatever hand they may be holding mid-match.
type PublicPlayer struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	SeatIndex   int    `json:"seatIndex"`
	Connected   bool   `json:"connected"`
	Ready       bool   `json:"ready"`
	IsHost      bool   `json:"isHost"`
}

// Settings are the per-room engine tunables. A room is created with
// DefaultSettings; no inbound command changes them afterwards.
type Settings struct {
	MaxPlayers           int   `json:"maxPlayers"`
	TurnTimeoutMs        int64 `json:"turnTimeoutMs"`
	SlapWindowMsMatch    int64 `json:"slapWindowMsMatch"`
	SlapWindowMsSameCard int64 `json:"slapWindowMsSameCard"`
	SlapWindowMsAction   int64 `json:"slapWindowMsAction"`
	MinHumanMs           int64 `json:"minHumanMs"`
}

// DefaultSettings mirrors engine.DefaultConfig so a freshly created room
// behaves exactly like the spec's reference defaults.
func DefaultSettings() Settings {
	cfg := engine.DefaultConfig()
	return Settings{
		MaxPlayers:           8,
		TurnTimeoutMs:        cfg.TurnTimeoutMs,
		SlapWindowMsMatch:    cfg.SlapWindowMsMatch,
		SlapWindowMsSameCard: cfg.SlapWindowMsSameCard,
		SlapWindowMsAction:   cfg.SlapWindowMsAction,
		MinHumanMs:           cfg.MinHumanMs,
	}
}

// EngineConfig converts room settings into the engine.Config the reducer
// consumes.
func (s Settings) EngineConfig() engine.Config {
	return engine.Config{
		SlapWindowMsMatch:    s.SlapWindowMsMatch,
		SlapWindowMsSameCard: s.SlapWindowMsSameCard,
		SlapWindowMsAction:   s.SlapWindowMsAction,
		MinHumanMs:           s.MinHumanMs,
		TurnTimeoutMs:        s.TurnTimeoutMs,
	}
}

// RoomState is the per-room record the store (C4) persists and the
// orchestrator (C6) mutates under its room lock.
type RoomState struct {
	RoomID     string            `json:"roomId"`
	RoomCode   string            `json:"roomCode"`
	Status     Status            `json:"status"`
	HostUserID string            `json:"hostUserId"`
	Players    []PublicPlayer    `json:"players"`
	Settings   Settings          `json:"settings"`
	GameState  *engine.GameState `json:"gameState,omitempty"`
	Version    int64             `json:"version"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Clone returns a deep copy so a reader's mutations are never visible to
// other holders of the same RoomState (spec.md §4.4, "Reads return a deep
// copy").
func (r RoomState) Clone() RoomState {
	out := r
	out.Players = append([]PublicPlayer{}, r.Players...)
	if r.GameState != nil {
		gs := r.GameState.Clone()
		out.GameState = &gs
	}
	return out
}

// PlayerBySeat returns the public player at the given seat, or nil.
func (r RoomState) PlayerBySeat(seat int) *PublicPlayer {
	for i := range r.Players {
		if r.Players[i].SeatIndex == seat {
			return &r.Players[i]
		}
	}
	return nil
}

// PlayerByUserID returns the public player with the given user id, or nil.
func (r RoomState) PlayerByUserID(userID string) *PublicPlayer {
	for i := range r.Players {
		if r.Players[i].UserID == userID {
			return &r.Players[i]
		}
	}
	return nil
}

// ConnectedCount counts players currently marked connected.
func (r RoomState) ConnectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// ReseatDense renumbers SeatIndex values to a dense [0,n) prefix in current
// slice order, preserving relative order. Called on every lobby departure
// per spec.md §3 invariants.
func (r *RoomState) ReseatDense() {
	for i := range r.Players {
		r.Players[i].SeatIndex = i
	}
}
