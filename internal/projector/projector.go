// Package projector implements the State View Projector (C3): the only
// code path allowed to turn an engine.GameState into the per-player public
// view that hides other players' hands and server-only slap bookkeeping.
package projector

import (
	"slaphard/internal/cards"
	"slaphard/internal/engine"
)

// PlayerView is one player's entry in a projected GameStateView.
type PlayerView struct {
	UserID      string       `json:"userId"`
	DisplayName string       `json:"displayName"`
	SeatIndex   int          `json:"seatIndex"`
	Connected   bool         `json:"connected"`
	Ready       bool         `json:"ready"`
	HandCount   int          `json:"handCount"`
	Hand        []cards.Card `json:"hand,omitempty"`
}

// SlapWindowView strips server-only bookkeeping (attempts, flipperSeat)
// from engine.SlapWindow and replaces attempts with the ordered user ids
// who have slapped so far.
type SlapWindowView struct {
	Active             bool          `json:"active"`
	Resolved           bool          `json:"resolved"`
	EventID            string        `json:"eventId,omitempty"`
	Reason             string        `json:"reason,omitempty"`
	ActionCard         *cards.Card   `json:"actionCard,omitempty"`
	StartServerTime    int64         `json:"startServerTime,omitempty"`
	DeadlineServerTime int64         `json:"deadlineServerTime,omitempty"`
	SlapWindowMs       int64         `json:"slapWindowMs,omitempty"`
	SlappedUserIDs     []string      `json:"slappedUserIds"`
	ReceivedSlapsCount int           `json:"receivedSlapsCount"`
}

// GameStateView is the projection every client receives: a GameState with
// hand contents stripped for everyone but the recipient.
type GameStateView struct {
	Status          string         `json:"status"`
	Players         []PlayerView   `json:"players"`
	CurrentTurnSeat int            `json:"currentTurnSeat"`
	ChantIndex      int            `json:"chantIndex"`
	PileCount       int            `json:"pileCount"`
	PileTopCard     *cards.Card    `json:"pileTopCard,omitempty"`
	LastRevealed    *cards.Card    `json:"lastRevealed,omitempty"`
	SlapWindow      SlapWindowView `json:"slapWindow"`
	WinnerUserID    string         `json:"winnerUserId,omitempty"`
	Version         int64          `json:"version"`
}

// Project builds the view of state as seen by meUserID: every other
// player's hand is reduced to a count, and the recipient's own hand is
// included in full.
func Project(state engine.GameState, meUserID string) GameStateView {
	players := make([]PlayerView, len(state.Players))
	for i, p := range state.Players {
		pv := PlayerView{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			SeatIndex:   p.SeatIndex,
			Connected:   p.Connected,
			Ready:       p.Ready,
			HandCount:   len(p.Hand),
		}
		if p.UserID == meUserID {
			pv.Hand = append([]cards.Card{}, p.Hand...)
		}
		players[i] = pv
	}

	slapped := make([]string, 0, len(state.SlapWindow.Attempts))
	for _, a := range state.SlapWindow.Attempts {
		slapped = append(slapped, a.UserID)
	}

	var lastRevealed *cards.Card
	if state.LastRevealed != nil {
		c := state.LastRevealed.Card
		lastRevealed = &c
	}

	return GameStateView{
		Status:          string(state.Status),
		Players:         players,
		CurrentTurnSeat: state.CurrentTurnSeat,
		ChantIndex:      state.ChantIndex,
		PileCount:       len(state.Pile),
		PileTopCard:     state.PileTopCard(),
		LastRevealed:    lastRevealed,
		WinnerUserID:    state.WinnerUserID,
		Version:         state.Version,
		SlapWindow: SlapWindowView{
			Active:             state.SlapWindow.Active,
			Resolved:           state.SlapWindow.Resolved,
			EventID:            state.SlapWindow.EventID,
			Reason:             string(state.SlapWindow.Reason),
			ActionCard:         state.SlapWindow.ActionCard,
			StartServerTime:    state.SlapWindow.StartServerTime,
			DeadlineServerTime: state.SlapWindow.DeadlineServerTime,
			SlapWindowMs:       state.SlapWindow.SlapWindowMs,
			SlappedUserIDs:     slapped,
			ReceivedSlapsCount: state.SlapWindow.ReceivedSlapsCount(),
		},
	}
}
