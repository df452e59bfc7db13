// Package engine implements the pure SlapHard game reducer (C2): a total
// function apply(state, event, now) -> (state', effects, error) with no
// side effects of its own. All nondeterminism — the clock, the shuffle —
// is supplied by the caller.
package engine

import "slaphard/internal/cards"

// Status is the lifecycle phase of a GameState.
type Status string

const (
	StatusInGame   Status = "IN_GAME"
	StatusFinished Status = "FINISHED"
)

// SlapReason identifies why a slap window opened.
type SlapReason string

const (
	ReasonMatch    SlapReason = "MATCH"
	ReasonAction   SlapReason = "ACTION"
	ReasonSameCard SlapReason = "SAME_CARD"
)

// Player is the engine's view of a seated player.
type Player struct {
	UserID      string
	DisplayName string
	SeatIndex   int
	Connected   bool
	Ready       bool
	Hand        []cards.Card
}

// Revealed records the most recent flip for SAME_CARD comparisons and
// client display.
type Revealed struct {
	Card       cards.Card
	FlipperSeat int
}

// SlapAttempt is one player's submitted slap against an open window.
type SlapAttempt struct {
	UserID             string
	EventID            string
	Gesture            *cards.Card
	ClientSeq          uint64
	ClientTime         int64
	OffsetMs           int64
	RTTMs              int64
	ReceivedAtServerTime int64
}

// SlapWindow is the bounded interval during which slaps are accepted.
type SlapWindow struct {
	Active             bool
	Resolved           bool
	EventID            string
	Reason             SlapReason
	ActionCard         *cards.Card
	StartServerTime    int64
	DeadlineServerTime int64
	SlapWindowMs       int64
	FlipperSeat        int
	Attempts           []SlapAttempt
}

// ReceivedSlapsCount is len(Attempts), exposed as a method so callers never
// have to remember to keep a counter in sync.
func (w SlapWindow) ReceivedSlapsCount() int { return len(w.Attempts) }

// Config carries every tunable the engine consults instead of reading from
// a package-level constant, so the reducer stays free of shared-mutable
// global state.
type Config struct {
	SlapWindowMsMatch    int64
	SlapWindowMsSameCard int64
	SlapWindowMsAction   int64
	MinHumanMs           int64
	TurnTimeoutMs        int64
}

// DefaultConfig matches the defaults named in spec.md §4.2a.
func DefaultConfig() Config {
	return Config{
		SlapWindowMsMatch:    2000,
		SlapWindowMsSameCard: 2000,
		SlapWindowMsAction:   3200,
		MinHumanMs:           60,
		TurnTimeoutMs:        5000,
	}
}

// GameState is the opaque, immutable-by-convention state the engine
// reduces over. Callers must treat any GameState returned by Apply as a
// fresh value; the engine never mutates its input in place.
type GameState struct {
	Status             Status
	Players            []Player
	CurrentTurnSeat    int
	ChantIndex         int
	Pile               []cards.Card
	LastRevealed       *Revealed
	SlapWindow         SlapWindow
	WinnerUserID       string
	Version            int64
	NextSlapEventNonce int64
	Config             Config
}

// PileTopCard returns the top of the pile, or nil if the pile is empty.
func (s GameState) PileTopCard() *cards.Card {
	if len(s.Pile) == 0 {
		return nil
	}
	c := s.Pile[len(s.Pile)-1]
	return &c
}

// Clone returns a deep copy of s so the caller can mutate the copy freely
// without the original (or any other outstanding reference) observing the
// change.
func (s GameState) Clone() GameState {
	out := s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p
		out.Players[i].Hand = append([]cards.Card{}, p.Hand...)
	}
	out.Pile = append([]cards.Card{}, s.Pile...)
	if s.LastRevealed != nil {
		rv := *s.LastRevealed
		out.LastRevealed = &rv
	}
	out.SlapWindow = s.SlapWindow
	out.SlapWindow.Attempts = append([]SlapAttempt{}, s.SlapWindow.Attempts...)
	if s.SlapWindow.ActionCard != nil {
		c := *s.SlapWindow.ActionCard
		out.SlapWindow.ActionCard = &c
	}
	return out
}

// seatOf returns the seat index of the player with the given user id, or -1.
func (s GameState) seatOf(userID string) int {
	for _, p := range s.Players {
		if p.UserID == userID {
			return p.SeatIndex
		}
	}
	return -1
}

func (s GameState) playerAtSeat(seat int) *Player {
	for i := range s.Players {
		if s.Players[i].SeatIndex == seat {
			return &s.Players[i]
		}
	}
	return nil
}

func (s GameState) playerByUserID(userID string) *Player {
	for i := range s.Players {
		if s.Players[i].UserID == userID {
			return &s.Players[i]
		}
	}
	return nil
}

func connectedCount(players []Player) int {
	n := 0
	for _, p := range players {
		if p.Connected {
			n++
		}
	}
	return n
}
