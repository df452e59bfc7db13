package orchestrator

import (
	"slaphard/internal/engine"
	"slaphard/internal/persistence"
)

// effectTypeName names an engine effect for the durable match event log,
// independent of its Go type name so the journal's event_type column
// stays stable across refactors.
func effectTypeName(eff engine.Effect) string {
	switch eff.(type) {
	case engine.SlapWindowOpenEffect:
		return "SLAP_WINDOW_OPEN"
	case engine.SlapResultEffect:
		return "SLAP_RESULT"
	case engine.PenaltyEffect:
		return "PENALTY"
	case engine.GameFinishedEffect:
		return "GAME_FINISHED"
	default:
		return "UNKNOWN"
	}
}

// persistenceMatchEvent builds the journal row for one resolved effect.
func persistenceMatchEvent(matchID string, seq int64, eff engine.Effect, payload []byte, serverTime int64) persistence.MatchEvent {
	return persistence.MatchEvent{
		MatchID:    matchID,
		Sequence:   seq,
		EventType:  effectTypeName(eff),
		Payload:    payload,
		ServerTime: serverTime,
	}
}
