package orchestrator

import (
	"sync"
	"time"
)

// roomActor serializes every mutation against one room — client
// commands, timer callbacks, and disconnect handling — behind a single
// goroutine's queue, per spec.md §5 "Parallel across rooms; serialized
// within a room."
type roomActor struct {
	roomID string
	queue  chan func()
	done   chan struct{}

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
	dedup      *dedupCache
	eventSeq   int64
}

// NextEventSeq returns the next value in this room's monotonic match
// event sequence, used as the journal's (match_id, sequence) key so
// repeated calls across many flips/slaps never collide.
func (a *roomActor) NextEventSeq() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.eventSeq++
	return a.eventSeq
}

// newRoomActor starts the actor's run loop and returns it.
func newRoomActor(roomID string) *roomActor {
	a := &roomActor{
		roomID: roomID,
		queue:  make(chan func(), 64),
		done:   make(chan struct{}),
		dedup:  newDedupCache(),
	}
	go a.run()
	return a
}

func (a *roomActor) run() {
	for {
		select {
		case fn := <-a.queue:
			fn()
		case <-a.done:
			return
		}
	}
}

// Submit enqueues fn to run on the actor's goroutine, in order.
func (a *roomActor) Submit(fn func()) {
	select {
	case a.queue <- fn:
	case <-a.done:
	}
}

// Stop terminates the actor's run loop and cancels any pending timer.
func (a *roomActor) Stop() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	close(a.done)
}

// ScheduleTimer arms a one-shot timer that, after d, submits fire to the
// actor's queue — but only if the room's timer generation has not moved
// on since scheduling, so a stale reschedule can never fire a callback
// meant for an earlier state.
func (a *roomActor) ScheduleTimer(d time.Duration, fire func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.generation++
	gen := a.generation
	a.timer = time.AfterFunc(d, func() {
		a.Submit(func() {
			a.mu.Lock()
			current := a.generation
			a.mu.Unlock()
			if current != gen {
				return
			}
			fire()
		})
	})
}

// ClearTimer cancels any pending timer and bumps the generation so an
// in-flight callback (already past the AfterFunc but not yet run) is
// recognized as stale. Called whenever the room leaves IN_GAME.
func (a *roomActor) ClearTimer() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.generation++
}
