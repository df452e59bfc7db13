package engine

import (
	"slaphard/internal/cards"
)

// PlayerInit describes one seated player at game start, in seat order.
type PlayerInit struct {
	UserID      string
	DisplayName string
	Connected   bool
}

// NewGameParams are the inputs to NewInitialState. Deck, Seed, and Shuffle
// are all optional: an empty Deck defaults to cards.DefaultDeck(), a zero
// Seed hashes the empty string, and Shuffle false deals the deck as given.
type NewGameParams struct {
	Players []PlayerInit
	Seed    cards.Seed
	Deck    []cards.Card
	Shuffle bool
	Config  Config
}

// NewInitialState validates params and constructs the starting GameState
// for a match: round-robin dealt hands, seat 0 to act first, chantIndex 0,
// version 1, an inactive slap window, and the nonce counter seeded at 1.
func NewInitialState(params NewGameParams) (GameState, error) {
	if !cards.ValidatePlayerCount(len(params.Players)) {
		return GameState{}, newError(ErrInternal, "invalid player count")
	}

	deck := params.Deck
	if len(deck) == 0 {
		deck = cards.DefaultDeck()
	}
	if !cards.ValidateDeck(deck) {
		return GameState{}, newError(ErrInternal, "invalid deck composition")
	}

	if params.Shuffle {
		deck = cards.Shuffle(deck, cards.NewRNG(params.Seed))
	}

	hands := cards.Deal(deck, len(params.Players))

	players := make([]Player, len(params.Players))
	for i, pi := range params.Players {
		players[i] = Player{
			UserID:      pi.UserID,
			DisplayName: pi.DisplayName,
			SeatIndex:   i,
			Connected:   pi.Connected,
			Hand:        hands[i],
		}
	}

	cfg := params.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}

	return GameState{
		Status:             StatusInGame,
		Players:            players,
		CurrentTurnSeat:    0,
		ChantIndex:         0,
		Pile:               nil,
		SlapWindow:         SlapWindow{},
		Version:            1,
		NextSlapEventNonce: 1,
		Config:             cfg,
	}, nil
}
