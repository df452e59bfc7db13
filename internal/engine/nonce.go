package engine

import "fmt"

// eventIDPrefix is part of the wire contract: identical event sequences
// from the same initial state must mint identical eventIds (spec.md §8,
// "EventId stability").
const eventIDPrefix = "sw-"

// nextEventID deterministically derives a slap-window event id from the
// current nonce. It is a pure function of its argument.
func nextEventID(nonce int64) string {
	return fmt.Sprintf("%s%08x", eventIDPrefix, nonce)
}
