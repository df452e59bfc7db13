package engine

import "slaphard/internal/cards"

// Event is the sum type of inputs the engine accepts. Concrete event
// structs implement it with a no-op marker method so the compiler keeps
// the set closed to the five kinds spec.md §4.2 names.
type Event interface {
	isEvent()
}

// FlipEvent is emitted when the current turn's player reveals their top
// card.
type FlipEvent struct {
	UserID string
}

// SlapEvent is a player's slap submission against an (ostensibly) open
// window.
type SlapEvent struct {
	UserID     string
	EventID    string
	Gesture    *cards.Card
	ClientSeq  uint64
	ClientTime int64
	OffsetMs   int64
	RTTMs      int64
}

// ResolveSlapWindowEvent forces resolution of the active slap window
// (orchestrator-driven, e.g. a deadline timer fire).
type ResolveSlapWindowEvent struct{}

// TurnTimeoutEvent fires when the current turn's player fails to flip in
// time.
type TurnTimeoutEvent struct{}

// SkipSlapWindowEvent forces the active window closed (administrative
// skip). It is validated and resolved exactly like ResolveSlapWindowEvent,
// including the ranking of any attempts already received.
type SkipSlapWindowEvent struct{}

func (FlipEvent) isEvent()              {}
func (SlapEvent) isEvent()              {}
func (ResolveSlapWindowEvent) isEvent() {}
func (TurnTimeoutEvent) isEvent()       {}
func (SkipSlapWindowEvent) isEvent()    {}
