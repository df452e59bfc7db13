package engine

import "slaphard/internal/cards"

// Effect is the sum type of descriptors Apply emits for the orchestrator to
// translate into broadcasts and journal entries. Effects carry only public
// fields — no implementation detail leaks through them.
type Effect interface {
	isEffect()
}

// SlapResultReason explains how a slap window's loser was chosen.
type SlapResultReason string

const (
	ResultNoSlaps         SlapResultReason = "NO_SLAPS"
	ResultNonSlapper      SlapResultReason = "NON_SLAPPER"
	ResultLastSlapper     SlapResultReason = "LAST_SLAPPER"
	ResultFirstValidWin   SlapResultReason = "FIRST_VALID_SLAP_WIN"
)

// PenaltyType identifies why a player took the pile as a penalty.
type PenaltyType string

const (
	PenaltyFalseSlap     PenaltyType = "FALSE_SLAP"
	PenaltyWrongGesture  PenaltyType = "WRONG_GESTURE"
	PenaltyTurnTimeout   PenaltyType = "TURN_TIMEOUT"
	PenaltyNoSlaps       PenaltyType = "NO_SLAPS"
)

// SlapWindowOpenEffect announces a newly opened slap window.
type SlapWindowOpenEffect struct {
	EventID            string
	Reason             SlapReason
	ActionCard         *cards.Card
	StartServerTime    int64
	DeadlineServerTime int64
	SlapWindowMs       int64
}

func (SlapWindowOpenEffect) isEffect() {}

// SlapResultEffect announces the resolution of a slap window.
type SlapResultEffect struct {
	EventID        string
	OrderedUserIDs []string
	LoserUserID    string
	Reason         SlapResultReason
	PileTaken      int
}

func (SlapResultEffect) isEffect() {}

// PenaltyEffect announces a penalty: a false slap, wrong gesture, or turn
// timeout, or the NO_SLAPS penalty that window resolution emits (ahead of
// its SlapResultEffect) when nobody slapped.
type PenaltyEffect struct {
	UserID      string
	PenaltyType PenaltyType
	PileTaken   int
}

func (PenaltyEffect) isEffect() {}

// GameFinishedEffect announces the match has ended.
type GameFinishedEffect struct {
	WinnerUserID string
}

func (GameFinishedEffect) isEffect() {}
