package engine

func applySlap(state GameState, e SlapEvent, now int64) Result {
	if state.Status != StatusInGame {
		return reject(state, ErrNotInGame, "game is not in progress")
	}

	slapper := state.playerByUserID(e.UserID)
	if slapper == nil {
		return reject(state, ErrInternal, "unknown user")
	}

	if state.SlapWindow.Active {
		for _, a := range state.SlapWindow.Attempts {
			if a.UserID == e.UserID && a.EventID == e.EventID {
				return reject(state, ErrAlreadySlapped, "duplicate slap for this window")
			}
		}
	}

	if !state.SlapWindow.Active || state.SlapWindow.EventID != e.EventID {
		taken := penalize(&state, e.UserID)
		var effects []Effect
		effects = append(effects, PenaltyEffect{UserID: e.UserID, PenaltyType: PenaltyFalseSlap, PileTaken: taken})
		state.Version++
		return Result{State: state, Effects: effects}
	}

	if state.SlapWindow.Reason == ReasonAction {
		wrongGesture := e.Gesture == nil || state.SlapWindow.ActionCard == nil || *e.Gesture != *state.SlapWindow.ActionCard
		if wrongGesture {
			taken := penalize(&state, e.UserID)
			effects := []Effect{PenaltyEffect{UserID: e.UserID, PenaltyType: PenaltyWrongGesture, PileTaken: taken}}
			state.Version++
			return Result{State: state, Effects: effects}
		}
	}

	isFirstAttempt := len(state.SlapWindow.Attempts) == 0

	state.SlapWindow.Attempts = append(state.SlapWindow.Attempts, SlapAttempt{
		UserID:               e.UserID,
		EventID:              e.EventID,
		Gesture:              e.Gesture,
		ClientSeq:            e.ClientSeq,
		ClientTime:           e.ClientTime,
		OffsetMs:             e.OffsetMs,
		RTTMs:                e.RTTMs,
		ReceivedAtServerTime: now,
	})

	if isFirstAttempt && len(slapper.Hand) == 0 {
		eventID := state.SlapWindow.EventID
		resetSlapWindow(&state)
		state.Status = StatusFinished
		state.WinnerUserID = e.UserID
		state.Version++
		effects := []Effect{
			SlapResultEffect{
				EventID:        eventID,
				OrderedUserIDs: []string{e.UserID},
				LoserUserID:    "",
				Reason:         ResultFirstValidWin,
			},
			GameFinishedEffect{WinnerUserID: e.UserID},
		}
		return Result{State: state, Effects: effects}
	}

	required := requiredSlapCount(state)
	if state.SlapWindow.ReceivedSlapsCount() >= required {
		return resolveWindow(state, now)
	}

	state.Version++
	return Result{State: state, Effects: nil}
}

// requiredSlapCount computes the number of attempts needed to auto-resolve
// the active window: connected players for SAME_CARD/ACTION, total players
// for MATCH (spec.md §4.2, "Compute required slap count").
func requiredSlapCount(state GameState) int {
	switch state.SlapWindow.Reason {
	case ReasonMatch:
		return len(state.Players)
	default:
		n := connectedCount(state.Players)
		if n < 1 {
			n = 1
		}
		return n
	}
}

// penalize applies the shared false-slap/wrong-gesture/turn-timeout penalty
// algorithm: the penalized player takes the full pile, becomes the current
// turn seat, the slap window resets, and turn-seat normalization runs if
// they still have no cards.
func penalize(state *GameState, userID string) int {
	seat := state.seatOf(userID)
	taken := takePile(state, seat)
	state.CurrentTurnSeat = seat
	resetSlapWindow(state)
	ensureCurrentSeatNonEmpty(state)
	return taken
}
