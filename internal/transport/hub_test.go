package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"slaphard/internal/protocol"
)

func TestHubSendToUnknownSocketDoesNotPanic(t *testing.T) {
	h := NewHub(nil)
	h.Send("nobody-here", protocol.NewEnvelope(protocol.EvtPong, protocol.PongPayload{}))
	if h.ClientCount() != 0 {
		t.Fatalf("expected no clients, got %d", h.ClientCount())
	}
}

func TestNewUpgraderAllowsConfiguredOrigin(t *testing.T) {
	up := NewUpgrader([]string{"https://example.com"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://example.com")
	if !up.CheckOrigin(req) {
		t.Fatal("expected configured origin to be allowed")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req2.Header.Set("Origin", "https://evil.example")
	if up.CheckOrigin(req2) {
		t.Fatal("expected unconfigured origin to be rejected")
	}
}

func TestNewUpgraderWithNoOriginsAllowsAny(t *testing.T) {
	up := NewUpgrader(nil)
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://anything.example")
	if !up.CheckOrigin(req) {
		t.Fatal("expected any origin to be allowed when none are configured")
	}
}
