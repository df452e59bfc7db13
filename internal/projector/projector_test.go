package projector

import (
	"testing"

	"slaphard/internal/cards"
	"slaphard/internal/engine"
)

func TestProjectHidesOtherPlayersHands(t *testing.T) {
	state := engine.GameState{
		Status: engine.StatusInGame,
		Players: []engine.Player{
			{UserID: "u1", SeatIndex: 0, Hand: []cards.Card{cards.Taco, cards.Cat}},
			{UserID: "u2", SeatIndex: 1, Hand: []cards.Card{cards.Goat}},
		},
		Version: 3,
	}

	view := Project(state, "u1")

	if view.Players[0].Hand == nil || len(view.Players[0].Hand) != 2 {
		t.Fatalf("expected requester's own hand visible, got %+v", view.Players[0])
	}
	if view.Players[1].Hand != nil {
		t.Fatalf("expected other player's hand hidden, got %+v", view.Players[1].Hand)
	}
	if view.Players[1].HandCount != 1 {
		t.Fatalf("expected handCount=1 for other player, got %d", view.Players[1].HandCount)
	}
}

func TestProjectStripsSlapWindowInternals(t *testing.T) {
	state := engine.GameState{
		Status: engine.StatusInGame,
		SlapWindow: engine.SlapWindow{
			Active:      true,
			Reason:      engine.ReasonMatch,
			FlipperSeat: 2,
			Attempts: []engine.SlapAttempt{
				{UserID: "u1"},
				{UserID: "u2"},
			},
		},
	}

	view := Project(state, "anyone")

	if view.SlapWindow.SlappedUserIDs == nil || len(view.SlapWindow.SlappedUserIDs) != 2 {
		t.Fatalf("expected slappedUserIds derived from attempts, got %+v", view.SlapWindow.SlappedUserIDs)
	}
	if view.SlapWindow.SlappedUserIDs[0] != "u1" || view.SlapWindow.SlappedUserIDs[1] != "u2" {
		t.Fatalf("expected insertion order preserved, got %v", view.SlapWindow.SlappedUserIDs)
	}
	if view.SlapWindow.ReceivedSlapsCount != 2 {
		t.Fatalf("expected receivedSlapsCount=2, got %d", view.SlapWindow.ReceivedSlapsCount)
	}
}
