package engine

import "sort"

func applyResolveSlapWindow(state GameState, now int64) Result {
	if state.Status != StatusInGame {
		return reject(state, ErrNotInGame, "game is not in progress")
	}
	if !state.SlapWindow.Active || state.SlapWindow.Resolved {
		return reject(state, ErrNoSlapWindow, "no active slap window")
	}
	return resolveWindow(state, now)
}

func applySkipSlapWindow(state GameState, now int64) Result {
	if state.Status != StatusInGame {
		return reject(state, ErrNotInGame, "game is not in progress")
	}
	if !state.SlapWindow.Active || state.SlapWindow.Resolved {
		return reject(state, ErrNoSlapWindow, "no active slap window")
	}
	return resolveWindow(state, now)
}

// reactionMs estimates a slap attempt's human reaction time per spec.md
// §4.2b: negative reactions floor to 0, then the result floors up to
// minHumanMs and caps at slapWindowMs+2000.
func reactionMs(a SlapAttempt, cfg Config, startServerTime, slapWindowMs int64) int64 {
	raw := a.ClientTime + a.OffsetMs - startServerTime
	if raw < 0 {
		raw = 0
	}
	if raw < cfg.MinHumanMs {
		raw = cfg.MinHumanMs
	}
	ceiling := slapWindowMs + 2000
	if raw > ceiling {
		raw = ceiling
	}
	return raw
}

// orderAttempts returns a copy of the window's attempts ordered per the
// active window's ranking rule (spec.md §4.2b).
func orderAttempts(state GameState) []SlapAttempt {
	attempts := append([]SlapAttempt{}, state.SlapWindow.Attempts...)

	if state.SlapWindow.Reason == ReasonSameCard {
		sort.SliceStable(attempts, func(i, j int) bool {
			a, b := attempts[i], attempts[j]
			if a.ReceivedAtServerTime != b.ReceivedAtServerTime {
				return a.ReceivedAtServerTime < b.ReceivedAtServerTime
			}
			if a.ClientSeq != b.ClientSeq {
				return a.ClientSeq < b.ClientSeq
			}
			return a.UserID < b.UserID
		})
		return attempts
	}

	reaction := make(map[string]int64, len(attempts))
	for _, a := range attempts {
		reaction[a.UserID+"|"+a.EventID] = reactionMs(a, state.Config, state.SlapWindow.StartServerTime, state.SlapWindow.SlapWindowMs)
	}
	sort.SliceStable(attempts, func(i, j int) bool {
		a, b := attempts[i], attempts[j]
		ra, rb := reaction[a.UserID+"|"+a.EventID], reaction[b.UserID+"|"+b.EventID]
		if ra != rb {
			return ra < rb
		}
		if a.ReceivedAtServerTime != b.ReceivedAtServerTime {
			return a.ReceivedAtServerTime < b.ReceivedAtServerTime
		}
		if a.ClientSeq != b.ClientSeq {
			return a.ClientSeq < b.ClientSeq
		}
		return a.UserID < b.UserID
	})
	return attempts
}

// resolveWindow performs §4.2b window resolution: ordering attempts,
// choosing a loser (or a winner via the zero-card-first-slapper rule), and
// advancing the turn to the loser's seat.
func resolveWindow(state GameState, now int64) Result {
	eventID := state.SlapWindow.EventID
	reason := state.SlapWindow.Reason
	flipperSeat := state.SlapWindow.FlipperSeat

	ordered := orderAttempts(state)

	if len(ordered) == 0 {
		resetSlapWindow(&state)
		taken := takePile(&state, flipperSeat)
		state.CurrentTurnSeat = flipperSeat
		ensureCurrentSeatNonEmpty(&state)
		state.Version++
		return Result{State: state, Effects: []Effect{
			PenaltyEffect{UserID: seatUserID(state, flipperSeat), PenaltyType: PenaltyNoSlaps, PileTaken: taken},
			SlapResultEffect{EventID: eventID, OrderedUserIDs: nil, LoserUserID: seatUserID(state, flipperSeat), Reason: ResultNoSlaps, PileTaken: taken},
		}}
	}

	firstUser := ordered[0].UserID
	if first := state.playerByUserID(firstUser); first != nil && len(first.Hand) == 0 {
		resetSlapWindow(&state)
		state.Status = StatusFinished
		state.WinnerUserID = firstUser
		state.Version++
		orderedIDs := userIDsOf(ordered)
		return Result{State: state, Effects: []Effect{
			SlapResultEffect{EventID: eventID, OrderedUserIDs: orderedIDs, LoserUserID: "", Reason: ResultFirstValidWin},
			GameFinishedEffect{WinnerUserID: firstUser},
		}}
	}

	var loserUserID string
	var resultReason SlapResultReason

	if reason == ReasonSameCard {
		loserUserID = ordered[len(ordered)-1].UserID
		resultReason = ResultLastSlapper
	} else {
		attempted := make(map[string]bool, len(ordered))
		for _, a := range ordered {
			attempted[a.UserID] = true
		}
		var nonSlappers []Player
		for _, p := range state.Players {
			if !attempted[p.UserID] {
				nonSlappers = append(nonSlappers, p)
			}
		}
		if len(nonSlappers) > 0 {
			sort.Slice(nonSlappers, func(i, j int) bool { return nonSlappers[i].SeatIndex < nonSlappers[j].SeatIndex })
			loserUserID = nonSlappers[len(nonSlappers)-1].UserID
			resultReason = ResultNonSlapper
		} else {
			loserUserID = ordered[len(ordered)-1].UserID
			resultReason = ResultLastSlapper
		}
	}

	loserSeat := state.seatOf(loserUserID)
	resetSlapWindow(&state)
	taken := takePile(&state, loserSeat)
	state.CurrentTurnSeat = loserSeat
	ensureCurrentSeatNonEmpty(&state)
	state.Version++

	return Result{State: state, Effects: []Effect{
		SlapResultEffect{EventID: eventID, OrderedUserIDs: userIDsOf(ordered), LoserUserID: loserUserID, Reason: resultReason, PileTaken: taken},
	}}
}

func userIDsOf(attempts []SlapAttempt) []string {
	ids := make([]string, len(attempts))
	for i, a := range attempts {
		ids[i] = a.UserID
	}
	return ids
}

func seatUserID(state GameState, seat int) string {
	if p := state.playerAtSeat(seat); p != nil {
		return p.UserID
	}
	return ""
}
