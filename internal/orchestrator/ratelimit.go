package orchestrator

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// gameplayRateLimit enforces spec's 40ms minimum inter-event gap for
// FLIP/SLAP commands per connection.
const gameplayRateLimit = 40 * time.Millisecond

// connectionLimiters hands out one token-bucket limiter per socket,
// created lazily on first gameplay command and discarded on disconnect.
type connectionLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newConnectionLimiters() *connectionLimiters {
	return &connectionLimiters{limiters: make(map[string]*rate.Limiter)}
}

// Allow reports whether socketID may send another gameplay event now.
func (c *connectionLimiters) Allow(socketID string) bool {
	c.mu.Lock()
	l, ok := c.limiters[socketID]
	if !ok {
		l = rate.NewLimiter(rate.Every(gameplayRateLimit), 1)
		c.limiters[socketID] = l
	}
	c.mu.Unlock()
	return l.Allow()
}

// Forget releases a socket's limiter on disconnect.
func (c *connectionLimiters) Forget(socketID string) {
	c.mu.Lock()
	delete(c.limiters, socketID)
	c.mu.Unlock()
}
