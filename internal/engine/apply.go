package engine

// Result is the outcome of Apply: the next state, the effects it produced
// (in emission order), and an optional rejection error. When Err is
// non-nil, State equals the input state unchanged (the event was
// rejected) except for the ALREADY_SLAPPED silent-dedup case, which also
// leaves state unchanged.
type Result struct {
	State   GameState
	Effects []Effect
	Err     *Error
}

// Apply is the engine's single entry point: a pure total function from
// (state, event, now) to a Result. It never reads a clock, RNG, or I/O —
// all nondeterminism is supplied via now and the event's own fields.
func Apply(state GameState, event Event, now int64) Result {
	working := state.Clone()

	switch e := event.(type) {
	case FlipEvent:
		return applyFlip(working, e, now)
	case SlapEvent:
		return applySlap(working, e, now)
	case ResolveSlapWindowEvent:
		return applyResolveSlapWindow(working, now)
	case TurnTimeoutEvent:
		return applyTurnTimeout(working, now)
	case SkipSlapWindowEvent:
		return applySkipSlapWindow(working, now)
	default:
		return Result{State: state, Err: newError(ErrInternal, "unrecognized event")}
	}
}

// reject returns a Result carrying the unmodified original state and the
// given rejection.
func reject(original GameState, code ErrorCode, message string) Result {
	return Result{State: original, Err: newError(code, message)}
}

// ensureCurrentSeatNonEmpty leaves CurrentTurnSeat untouched if it already
// points at a player with cards, and otherwise runs normalizeTurn. This is
// the guard every call site (flip, penalty, window resolution) uses so a
// freshly assigned valid seat is never skipped past.
func ensureCurrentSeatNonEmpty(state *GameState) {
	if len(state.Players) == 0 {
		return
	}
	cur := state.playerAtSeat(state.CurrentTurnSeat)
	if cur != nil && len(cur.Hand) > 0 {
		return
	}
	normalizeTurn(state)
}

// normalizeTurn walks forward from state.CurrentTurnSeat+1 until it finds a
// seat with a nonempty hand, per spec.md "Turn-seat normalization". If no
// seat has cards it leaves CurrentTurnSeat unchanged.
func normalizeTurn(state *GameState) {
	n := len(state.Players)
	if n == 0 {
		return
	}
	start := state.CurrentTurnSeat
	seat := start
	for i := 0; i < n; i++ {
		seat = (seat + 1) % n
		p := state.playerAtSeat(seat)
		if p != nil && len(p.Hand) > 0 {
			state.CurrentTurnSeat = seat
			return
		}
	}
	// No nonempty seat found; current seat may itself already be empty,
	// but there is nowhere better to normalize to.
}

// resetSlapWindow clears the active/resolved window back to its inactive
// baseline.
func resetSlapWindow(state *GameState) {
	state.SlapWindow = SlapWindow{}
}

// takePile moves the entire pile onto the bottom of the recipient's hand
// (pile cards appended after existing hand cards, in pile order) and
// clears the pile. Returns the number of cards taken.
func takePile(state *GameState, recipientSeat int) int {
	taken := len(state.Pile)
	if taken == 0 {
		return 0
	}
	p := state.playerAtSeat(recipientSeat)
	if p != nil {
		p.Hand = append(p.Hand, state.Pile...)
	}
	state.Pile = nil
	return taken
}
