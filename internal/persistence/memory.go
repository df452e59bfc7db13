package persistence

import (
	"context"
	"sync"
	"time"

	"slaphard/internal/room"
)

// MemoryJournal is a process-local Journal used in tests and in
// deployments that run with ENABLE_DB_PERSISTENCE unset — the game
// functions identically, just without a durable audit trail surviving a
// restart.
type MemoryJournal struct {
	mu        sync.Mutex
	rooms     map[string]room.RoomState
	deletedAt map[string]time.Time
	matches   map[string]matchRecord
	events    map[string][]MatchEvent
}

type matchRecord struct {
	RoomID       string
	PlayerIDs    []string
	StartedAt    time.Time
	FinishedAt   time.Time
	WinnerUserID string
	Finished     bool
}

// NewMemoryJournal builds an empty MemoryJournal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{
		rooms:     make(map[string]room.RoomState),
		deletedAt: make(map[string]time.Time),
		matches:   make(map[string]matchRecord),
		events:    make(map[string][]MatchEvent),
	}
}

func (j *MemoryJournal) UpsertRoomMetadata(_ context.Context, r room.RoomState) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rooms[r.RoomID] = r.Clone()
	return nil
}

func (j *MemoryJournal) WriteRoomSnapshot(_ context.Context, r room.RoomState) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rooms[r.RoomID] = r.Clone()
	return nil
}

func (j *MemoryJournal) MarkRoomDeleted(_ context.Context, roomID string, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.deletedAt[roomID] = at
	return nil
}

func (j *MemoryJournal) StartMatch(_ context.Context, matchID, roomID string, playerUserIDs []string, startedAt time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.matches[matchID] = matchRecord{
		RoomID:    roomID,
		PlayerIDs: append([]string{}, playerUserIDs...),
		StartedAt: startedAt,
	}
	return nil
}

func (j *MemoryJournal) FinishMatch(_ context.Context, matchID, winnerUserID string, finishedAt time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	rec, ok := j.matches[matchID]
	if !ok {
		return ErrNotFound
	}
	rec.WinnerUserID = winnerUserID
	rec.FinishedAt = finishedAt
	rec.Finished = true
	j.matches[matchID] = rec
	return nil
}

func (j *MemoryJournal) AppendMatchEvent(_ context.Context, e MatchEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events[e.MatchID] = append(j.events[e.MatchID], e)
	return nil
}

// EventsFor returns the recorded events for a match, for test assertions.
func (j *MemoryJournal) EventsFor(matchID string) []MatchEvent {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]MatchEvent{}, j.events[matchID]...)
}
