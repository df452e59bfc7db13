// Package transport is the websocket edge (C8): it terminates client
// connections, decodes/encodes the wire envelope, and is the concrete
// implementation of orchestrator.Sender. It holds no game or room state of
// its own — every command it receives is handed straight to the
// orchestrator, addressed only by socket id.
package transport

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"slaphard/internal/orchestrator"
	"slaphard/internal/protocol"
)

// Hub tracks every live Client and satisfies orchestrator.Sender.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	orchestrator *orchestrator.Orchestrator
	log          *logrus.Entry
}

// NewHub builds a Hub with no orchestrator attached yet. Since the
// orchestrator needs a Sender at construction and the Hub needs the
// orchestrator to dispatch into, wire them together with SetOrchestrator
// immediately after both exist, before calling Run.
func NewHub(log *logrus.Entry) *Hub {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log.WithField("component", "transport"),
	}
}

// SetOrchestrator attaches the orchestrator this hub dispatches inbound
// commands to. Must be called before Run or ServeWS.
func (h *Hub) SetOrchestrator(o *orchestrator.Orchestrator) {
	h.orchestrator = o
}

// Run processes register/unregister events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.SocketID] = c
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.SocketID]; ok {
				delete(h.clients, c.SocketID)
				close(c.send)
			}
			h.mu.Unlock()
			h.orchestrator.HandleDisconnect(context.Background(), c.SocketID)

		case <-ctx.Done():
			return
		}
	}
}

// Send implements orchestrator.Sender: it queues env for delivery to
// socketID, silently dropping it if that socket is no longer connected.
func (h *Hub) Send(socketID string, env protocol.Envelope) {
	h.mu.RLock()
	c, ok := h.clients[socketID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	c.enqueue(env)
}

// ClientCount returns the number of currently registered sockets, for the
// debug endpoint.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
