package engine

import "slaphard/internal/cards"

func applyFlip(state GameState, e FlipEvent, now int64) Result {
	if state.Status != StatusInGame {
		return reject(state, ErrNotInGame, "game is not in progress")
	}

	original := state
	if !state.SlapWindow.Active {
		ensureCurrentSeatNonEmpty(&state)
	}

	if state.SlapWindow.Active && !state.SlapWindow.Resolved {
		return reject(original, ErrSlapWindowActive, "a slap window is already open")
	}

	current := state.playerAtSeat(state.CurrentTurnSeat)
	if current == nil || current.UserID != e.UserID {
		return reject(original, ErrNotYourTurn, "it is not your turn to flip")
	}
	if len(current.Hand) == 0 {
		return reject(original, ErrInternal, "current turn player has no cards")
	}

	priorRevealed := state.LastRevealed

	flipped := current.Hand[0]
	current.Hand = current.Hand[1:]
	state.Pile = append(state.Pile, flipped)
	state.LastRevealed = &Revealed{Card: flipped, FlipperSeat: current.SeatIndex}

	var effects []Effect

	if len(current.Hand) == 0 {
		state.Status = StatusFinished
		state.WinnerUserID = current.UserID
		resetSlapWindow(&state)
		state.ChantIndex = (state.ChantIndex + 1) % len(cards.ChantOrder)
		state.Version++
		effects = append(effects, GameFinishedEffect{WinnerUserID: current.UserID})
		return Result{State: state, Effects: effects}
	}

	var reason SlapReason
	var actionCard *cards.Card
	switch {
	case cards.IsAction(flipped):
		reason = ReasonAction
		c := flipped
		actionCard = &c
	case cards.IsNormal(flipped) && priorRevealed != nil && priorRevealed.Card == flipped:
		reason = ReasonSameCard
	case cards.IsNormal(flipped) && flipped == cards.ChantWord(state.ChantIndex):
		reason = ReasonMatch
	}

	if reason != "" {
		openSlapWindow(&state, reason, actionCard, current.SeatIndex, now)
		state.ChantIndex = (state.ChantIndex + 1) % len(cards.ChantOrder)
		state.Version++
		effects = append(effects, SlapWindowOpenEffect{
			EventID:            state.SlapWindow.EventID,
			Reason:             state.SlapWindow.Reason,
			ActionCard:         state.SlapWindow.ActionCard,
			StartServerTime:    state.SlapWindow.StartServerTime,
			DeadlineServerTime: state.SlapWindow.DeadlineServerTime,
			SlapWindowMs:       state.SlapWindow.SlapWindowMs,
		})
		return Result{State: state, Effects: effects}
	}

	normalizeTurn(&state)
	state.ChantIndex = (state.ChantIndex + 1) % len(cards.ChantOrder)
	state.Version++
	return Result{State: state, Effects: effects}
}

// openSlapWindow installs a fresh SlapWindow of the given reason on state,
// minting a new deterministic eventId from the nonce counter.
func openSlapWindow(state *GameState, reason SlapReason, actionCard *cards.Card, flipperSeat int, now int64) {
	windowMs := windowDuration(state.Config, reason)
	eventID := nextEventID(state.NextSlapEventNonce)
	state.NextSlapEventNonce++
	state.SlapWindow = SlapWindow{
		Active:             true,
		Resolved:           false,
		EventID:            eventID,
		Reason:             reason,
		ActionCard:         actionCard,
		StartServerTime:    now,
		DeadlineServerTime: now + windowMs,
		SlapWindowMs:       windowMs,
		FlipperSeat:        flipperSeat,
	}
}

func windowDuration(cfg Config, reason SlapReason) int64 {
	switch reason {
	case ReasonAction:
		return cfg.SlapWindowMsAction
	case ReasonSameCard:
		return cfg.SlapWindowMsSameCard
	default:
		return cfg.SlapWindowMsMatch
	}
}
