package roomstore

import (
	"context"
	"sync"

	"slaphard/internal/room"
)

// MemoryStore is the authoritative in-process Store: a single-node
// deployment's source of truth, and the implementation the orchestrator's
// tests run against. It is never a cache in front of something else.
type MemoryStore struct {
	mu        sync.RWMutex
	byID      map[string]room.RoomState
	codeToID  map[string]string
	userToRoom map[string]string
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]room.RoomState),
		codeToID:   make(map[string]string),
		userToRoom: make(map[string]string),
	}
}

func (m *MemoryStore) GetRoomByID(_ context.Context, roomID string) (room.RoomState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byID[roomID]
	if !ok {
		return room.RoomState{}, ErrNotFound
	}
	return r.Clone(), nil
}

func (m *MemoryStore) GetRoomByCode(_ context.Context, code string) (room.RoomState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.codeToID[code]
	if !ok {
		return room.RoomState{}, ErrNotFound
	}
	r, ok := m.byID[id]
	if !ok {
		return room.RoomState{}, ErrNotFound
	}
	return r.Clone(), nil
}

func (m *MemoryStore) SaveRoom(_ context.Context, r room.RoomState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[r.RoomID] = r.Clone()
	m.codeToID[r.RoomCode] = r.RoomID
	return nil
}

func (m *MemoryStore) DeleteRoom(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[roomID]
	if ok {
		delete(m.codeToID, r.RoomCode)
	}
	delete(m.byID, roomID)
	return nil
}

func (m *MemoryStore) RoomCodeExists(_ context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.codeToID[code]
	return ok, nil
}

func (m *MemoryStore) SetUserRoom(_ context.Context, userID, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userToRoom[userID] = roomID
	return nil
}

func (m *MemoryStore) GetUserRoom(_ context.Context, userID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roomID, ok := m.userToRoom[userID]
	if !ok {
		return "", ErrNotFound
	}
	return roomID, nil
}

func (m *MemoryStore) ClearUserRoom(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.userToRoom, userID)
	return nil
}

func (m *MemoryStore) ListJoinableRooms(_ context.Context) ([]RoomSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomSummary, 0)
	for _, r := range m.byID {
		if r.Status != room.StatusLobby || len(r.Players) >= r.Settings.MaxPlayers {
			continue
		}
		hostName := ""
		if host := r.PlayerByUserID(r.HostUserID); host != nil {
			hostName = host.DisplayName
		}
		out = append(out, RoomSummary{
			RoomCode:    r.RoomCode,
			PlayerCount: len(r.Players),
			MaxPlayers:  r.Settings.MaxPlayers,
			HostName:    hostName,
		})
	}
	return out, nil
}
