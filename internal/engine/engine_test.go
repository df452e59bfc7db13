package engine

import (
	"testing"

	"slaphard/internal/cards"
)

func must(t *testing.T, s GameState, err error) GameState {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func newTwoPlayerGame(t *testing.T, deck []cards.Card) GameState {
	t.Helper()
	state, err := NewInitialState(NewGameParams{
		Players: []PlayerInit{
			{UserID: "u1", DisplayName: "One", Connected: true},
			{UserID: "u2", DisplayName: "Two", Connected: true},
		},
		Deck:    deck,
		Shuffle: false,
	})
	return must(t, state, err)
}

func TestChantIncrementsOnEachFlip(t *testing.T) {
	state := newTwoPlayerGame(t, []cards.Card{cards.Cat, cards.Goat, cards.Cheese, cards.Pizza})

	r1 := Apply(state, FlipEvent{UserID: "u1"}, 1000)
	if r1.Err != nil {
		t.Fatalf("flip 1 rejected: %v", r1.Err)
	}
	if r1.State.ChantIndex != 1 {
		t.Fatalf("expected chantIndex=1 after first flip, got %d", r1.State.ChantIndex)
	}

	r2 := Apply(r1.State, FlipEvent{UserID: "u2"}, 1001)
	if r2.Err != nil {
		t.Fatalf("flip 2 rejected: %v", r2.Err)
	}
	if r2.State.ChantIndex != 2 {
		t.Fatalf("expected chantIndex=2 after second flip, got %d", r2.State.ChantIndex)
	}
}

func TestActionWindowWrongGesture(t *testing.T) {
	state := newTwoPlayerGame(t, []cards.Card{cards.Gorilla, cards.Cat, cards.Goat, cards.Cheese})

	r1 := Apply(state, FlipEvent{UserID: "u1"}, 1000)
	if r1.Err != nil {
		t.Fatalf("flip rejected: %v", r1.Err)
	}
	open, ok := effectOfType[SlapWindowOpenEffect](r1.Effects)
	if !ok {
		t.Fatalf("expected SlapWindowOpenEffect, got %#v", r1.Effects)
	}
	if open.Reason != ReasonAction || open.SlapWindowMs != 3200 {
		t.Fatalf("expected ACTION window at 3200ms, got %+v", open)
	}

	wrong := cards.Narwhal
	r2 := Apply(r1.State, SlapEvent{
		UserID:     "u2",
		EventID:    open.EventID,
		Gesture:    &wrong,
		ClientTime: 1100,
	}, 1100)
	if r2.Err != nil {
		t.Fatalf("slap rejected: %v", r2.Err)
	}
	pen, ok := effectOfType[PenaltyEffect](r2.Effects)
	if !ok {
		t.Fatalf("expected PenaltyEffect, got %#v", r2.Effects)
	}
	if pen.UserID != "u2" || pen.PenaltyType != PenaltyWrongGesture {
		t.Fatalf("expected WRONG_GESTURE penalty on u2, got %+v", pen)
	}
	if r2.State.CurrentTurnSeat != 1 {
		t.Fatalf("expected currentTurnSeat=1, got %d", r2.State.CurrentTurnSeat)
	}
}

func TestMatchWindowTieBreakByReceivedAt(t *testing.T) {
	state := newTwoPlayerGame(t, []cards.Card{cards.Taco, cards.Cat, cards.Goat, cards.Cheese})

	r1 := Apply(state, FlipEvent{UserID: "u1"}, 1000)
	if r1.Err != nil {
		t.Fatalf("flip rejected: %v", r1.Err)
	}
	open, ok := effectOfType[SlapWindowOpenEffect](r1.Effects)
	if !ok || open.Reason != ReasonMatch {
		t.Fatalf("expected MATCH window, got %#v", r1.Effects)
	}

	// u2 slaps first in server time but both compute to the same reactionMs.
	r2 := Apply(r1.State, SlapEvent{UserID: "u2", EventID: open.EventID, ClientTime: 1060}, 1020)
	if r2.Err != nil {
		t.Fatalf("slap u2 rejected: %v", r2.Err)
	}
	r3 := Apply(r2.State, SlapEvent{UserID: "u1", EventID: open.EventID, ClientTime: 1060}, 1030)
	if r3.Err != nil {
		t.Fatalf("slap u1 rejected: %v", r3.Err)
	}

	result, ok := effectOfType[SlapResultEffect](r3.Effects)
	if !ok {
		t.Fatalf("expected SlapResultEffect after second slap auto-resolves, got %#v", r3.Effects)
	}
	if len(result.OrderedUserIDs) != 2 || result.OrderedUserIDs[0] != "u2" || result.OrderedUserIDs[1] != "u1" {
		t.Fatalf("expected ordered [u2,u1], got %v", result.OrderedUserIDs)
	}
	if result.LoserUserID != "u1" || result.Reason != ResultLastSlapper {
		t.Fatalf("expected u1 to lose as LAST_SLAPPER, got %+v", result)
	}
}

func TestNoSlapsResolvesToFlipper(t *testing.T) {
	state := newTwoPlayerGame(t, []cards.Card{cards.Taco, cards.Cat, cards.Goat, cards.Cheese})

	r1 := Apply(state, FlipEvent{UserID: "u1"}, 1000)
	if r1.Err != nil {
		t.Fatalf("flip rejected: %v", r1.Err)
	}

	r2 := Apply(r1.State, ResolveSlapWindowEvent{}, 3100)
	if r2.Err != nil {
		t.Fatalf("resolve rejected: %v", r2.Err)
	}
	pen, ok := effectOfType[PenaltyEffect](r2.Effects)
	if !ok || pen.UserID != "u1" || pen.PenaltyType != PenaltyNoSlaps {
		t.Fatalf("expected NO_SLAPS penalty on u1, got %#v", r2.Effects)
	}
	result, ok := effectOfType[SlapResultEffect](r2.Effects)
	if !ok || result.Reason != ResultNoSlaps || result.LoserUserID != "u1" {
		t.Fatalf("expected SLAP_RESULT NO_SLAPS for u1, got %#v", r2.Effects)
	}
	if r2.State.CurrentTurnSeat != 0 {
		t.Fatalf("expected currentTurnSeat=0, got %d", r2.State.CurrentTurnSeat)
	}
}

func TestZeroCardSeatSkippedOnFlip(t *testing.T) {
	state := GameState{
		Status: StatusInGame,
		Players: []Player{
			{UserID: "u1", SeatIndex: 0, Connected: true, Hand: []cards.Card{cards.Cat, cards.Pizza}},
			{UserID: "u2", SeatIndex: 1, Connected: true, Hand: nil},
			{UserID: "u3", SeatIndex: 2, Connected: true, Hand: []cards.Card{cards.Goat, cards.Cheese}},
		},
		CurrentTurnSeat: 0,
		Version:         1,
		Config:          DefaultConfig(),
	}

	r := Apply(state, FlipEvent{UserID: "u1"}, 1000)
	if r.Err != nil {
		t.Fatalf("flip rejected: %v", r.Err)
	}
	if len(r.Effects) != 0 {
		t.Fatalf("expected no window to open for CAT at chant index 0, got %#v", r.Effects)
	}
	if r.State.CurrentTurnSeat != 2 {
		t.Fatalf("expected seat 1 (empty) to be skipped, landing on seat 2, got %d", r.State.CurrentTurnSeat)
	}
}

func TestFlipEmptyingHandFinishesImmediately(t *testing.T) {
	state := GameState{
		Status: StatusInGame,
		Players: []Player{
			{UserID: "u1", SeatIndex: 0, Connected: true, Hand: []cards.Card{cards.Gorilla}},
			{UserID: "u2", SeatIndex: 1, Connected: true, Hand: []cards.Card{cards.Cat}},
		},
		CurrentTurnSeat: 0,
		Version:         1,
		Config:          DefaultConfig(),
	}

	r := Apply(state, FlipEvent{UserID: "u1"}, 1000)
	if r.Err != nil {
		t.Fatalf("flip rejected: %v", r.Err)
	}
	if r.State.Status != StatusFinished || r.State.WinnerUserID != "u1" {
		t.Fatalf("expected u1 to win immediately on emptying hand, got %+v", r.State)
	}
	if _, ok := effectOfType[SlapWindowOpenEffect](r.Effects); ok {
		t.Fatalf("no slap window should open when the flip empties the hand, got %#v", r.Effects)
	}
	if _, ok := effectOfType[GameFinishedEffect](r.Effects); !ok {
		t.Fatalf("expected GAME_FINISHED effect, got %#v", r.Effects)
	}
}

func TestDuplicateSlapIsIdempotent(t *testing.T) {
	state := newTwoPlayerGame(t, []cards.Card{cards.Taco, cards.Cat, cards.Goat, cards.Cheese})
	r1 := Apply(state, FlipEvent{UserID: "u1"}, 1000)
	open, _ := effectOfType[SlapWindowOpenEffect](r1.Effects)

	r2 := Apply(r1.State, SlapEvent{UserID: "u2", EventID: open.EventID, ClientTime: 1060}, 1020)
	if r2.Err != nil {
		t.Fatalf("first slap rejected: %v", r2.Err)
	}

	r3 := Apply(r2.State, SlapEvent{UserID: "u2", EventID: open.EventID, ClientTime: 1060}, 1025)
	if r3.Err == nil || r3.Err.Code != ErrAlreadySlapped {
		t.Fatalf("expected ALREADY_SLAPPED, got %+v", r3.Err)
	}
	if r3.State.Version != r2.State.Version {
		t.Fatalf("duplicate slap must not bump version: %d vs %d", r3.State.Version, r2.State.Version)
	}
}

func TestStaleEventIDIsFalseSlap(t *testing.T) {
	state := newTwoPlayerGame(t, []cards.Card{cards.Taco, cards.Cat, cards.Goat, cards.Cheese})
	r1 := Apply(state, FlipEvent{UserID: "u1"}, 1000)
	if _, ok := effectOfType[SlapWindowOpenEffect](r1.Effects); !ok {
		t.Fatalf("expected window to open")
	}

	r2 := Apply(r1.State, SlapEvent{UserID: "u2", EventID: "sw-ffffffff", ClientTime: 1060}, 1020)
	if r2.Err != nil {
		t.Fatalf("stale slap should not be an engine error, got %v", r2.Err)
	}
	pen, ok := effectOfType[PenaltyEffect](r2.Effects)
	if !ok || pen.PenaltyType != PenaltyFalseSlap || pen.UserID != "u2" {
		t.Fatalf("expected FALSE_SLAP penalty on u2, got %#v", r2.Effects)
	}
}

func TestDeterminismSameInputsSameOutput(t *testing.T) {
	build := func() GameState { return newTwoPlayerGame(t, []cards.Card{cards.Gorilla, cards.Cat, cards.Goat, cards.Cheese}) }
	s1 := build()
	s2 := build()

	r1 := Apply(s1, FlipEvent{UserID: "u1"}, 5000)
	r2 := Apply(s2, FlipEvent{UserID: "u1"}, 5000)

	if r1.State.Version != r2.State.Version || r1.State.SlapWindow.EventID != r2.State.SlapWindow.EventID {
		t.Fatalf("identical inputs produced different outputs: %+v vs %+v", r1.State, r2.State)
	}
}

func effectOfType[T Effect](effects []Effect) (T, bool) {
	var zero T
	for _, e := range effects {
		if v, ok := e.(T); ok {
			return v, true
		}
	}
	return zero, false
}
