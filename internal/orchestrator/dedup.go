package orchestrator

import (
	"sync"
	"time"
)

// lateSlapGrace bounds how long after a SLAP_RESULT a same-eventId slap
// from a listed participant is silently dropped, per spec.md §4.6
// "late-packet dedup" — a client's packet that raced the window's
// deadline should not be scored as a FALSE_SLAP against them.
const lateSlapGrace = 250 * time.Millisecond

// resolvedWindow is one entry in a room's late-packet dedup cache.
type resolvedWindow struct {
	eventID      string
	resolvedAt   time.Time
	participants map[string]struct{}
}

// dedupCache remembers recently resolved slap windows for one room so a
// late-arriving SLAP for an already-closed window can be dropped instead
// of routed through the engine as a false slap.
type dedupCache struct {
	mu      sync.Mutex
	entries []resolvedWindow
}

func newDedupCache() *dedupCache {
	return &dedupCache{}
}

// Record notes that eventID resolved at resolvedAt with the given
// participant user ids.
func (d *dedupCache) Record(eventID string, resolvedAt time.Time, participants []string) {
	set := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		set[p] = struct{}{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, resolvedWindow{eventID: eventID, resolvedAt: resolvedAt, participants: set})
	d.prune(resolvedAt)
}

// ShouldDrop reports whether a SLAP with eventID from userID arriving at
// now should be silently dropped as a late duplicate.
func (d *dedupCache) ShouldDrop(eventID, userID string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prune(now)
	for _, e := range d.entries {
		if e.eventID != eventID {
			continue
		}
		if now.Sub(e.resolvedAt) > lateSlapGrace {
			continue
		}
		if _, ok := e.participants[userID]; ok {
			return true
		}
	}
	return false
}

// prune drops entries older than the grace window, relative to now.
func (d *dedupCache) prune(now time.Time) {
	kept := d.entries[:0]
	for _, e := range d.entries {
		if now.Sub(e.resolvedAt) <= lateSlapGrace {
			kept = append(kept, e)
		}
	}
	d.entries = kept
}
