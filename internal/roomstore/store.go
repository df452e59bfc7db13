// Package roomstore is the room store (C4): the three-index contract
// (room by id, room by code, and a user's current room) that the
// orchestrator uses to look up and persist RoomState between commands.
// Two implementations satisfy Store: an in-process map for tests and
// single-node deployments, and a Redis-backed one for clustered
// deployments where all room state must be reachable from any node.
package roomstore

import (
	"context"
	"errors"

	"slaphard/internal/room"
)

// ErrNotFound is returned by lookups that find nothing, so callers can
// distinguish "no room" from a transport error.
var ErrNotFound = errors.New("roomstore: not found")

// Store is the persistence contract the orchestrator depends on. All
// methods are safe for concurrent use; GetRoom* return independent deep
// copies (room.RoomState.Clone semantics) so callers never observe another
// goroutine's in-flight mutation.
type Store interface {
	// GetRoomByID fetches a room by its stable internal id.
	GetRoomByID(ctx context.Context, roomID string) (room.RoomState, error)
	// GetRoomByCode fetches a room by its human-facing join code.
	GetRoomByCode(ctx context.Context, code string) (room.RoomState, error)
	// SaveRoom upserts the given room snapshot, indexed by both id and code.
	SaveRoom(ctx context.Context, r room.RoomState) error
	// DeleteRoom removes a room and its code index.
	DeleteRoom(ctx context.Context, roomID string) error
	// RoomCodeExists reports whether code is currently assigned to a room,
	// for use with room.GenerateRoomCode's collision check.
	RoomCodeExists(ctx context.Context, code string) (bool, error)

	// SetUserRoom records that userID's active room is roomID.
	SetUserRoom(ctx context.Context, userID, roomID string) error
	// GetUserRoom returns the roomID a user is currently seated in, if any.
	GetUserRoom(ctx context.Context, userID string) (string, error)
	// ClearUserRoom removes a user's active-room index entry.
	ClearUserRoom(ctx context.Context, userID string) error

	// ListJoinableRooms returns a summary of every room currently in the
	// lobby with at least one free seat, for the lobby-browser endpoint.
	ListJoinableRooms(ctx context.Context) ([]RoomSummary, error)
}

// RoomSummary is the lobby-browser projection of a room: just enough to
// decide whether to join, never the full RoomState.
type RoomSummary struct {
	RoomCode    string `json:"roomCode"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	HostName    string `json:"hostName"`
}
