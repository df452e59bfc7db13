package engine

func applyTurnTimeout(state GameState, now int64) Result {
	if state.Status != StatusInGame {
		return reject(state, ErrNotInGame, "game is not in progress")
	}
	if state.SlapWindow.Active && !state.SlapWindow.Resolved {
		return reject(state, ErrSlapWindowActive, "a slap window is already open")
	}

	current := state.playerAtSeat(state.CurrentTurnSeat)
	if current == nil {
		return reject(state, ErrInternal, "no current turn player")
	}

	userID := current.UserID
	taken := penalize(&state, userID)
	state.Version++

	return Result{State: state, Effects: []Effect{
		PenaltyEffect{UserID: userID, PenaltyType: PenaltyTurnTimeout, PileTaken: taken},
	}}
}
