package registry

import "testing"

func TestAddAndGet(t *testing.T) {
	r := New()
	r.Add("s1", "u1")
	conn, ok := r.Get("s1")
	if !ok || conn.UserID != "u1" {
		t.Fatalf("expected connection for u1, got %+v ok=%v", conn, ok)
	}
}

func TestMultipleConnectionsPerUser(t *testing.T) {
	r := New()
	r.Add("s1", "u1")
	r.Add("s2", "u1")
	if got := r.UserConnectionCount("u1"); got != 2 {
		t.Fatalf("expected 2 connections for u1, got %d", got)
	}
	r.Remove("s1")
	if got := r.UserConnectionCount("u1"); got != 1 {
		t.Fatalf("expected 1 connection for u1 after removing s1, got %d", got)
	}
}

func TestBindRoomTracksSocketsInRoom(t *testing.T) {
	r := New()
	r.Add("s1", "u1")
	r.Add("s2", "u2")
	r.BindRoom("s1", "room-1")
	r.BindRoom("s2", "room-1")

	sockets := r.SocketsInRoom("room-1")
	if len(sockets) != 2 {
		t.Fatalf("expected 2 sockets in room-1, got %v", sockets)
	}
}

func TestBindRoomReplacesPriorBinding(t *testing.T) {
	r := New()
	r.Add("s1", "u1")
	r.BindRoom("s1", "room-1")
	r.BindRoom("s1", "room-2")

	if sockets := r.SocketsInRoom("room-1"); len(sockets) != 0 {
		t.Fatalf("expected room-1 to have no sockets after rebind, got %v", sockets)
	}
	if sockets := r.SocketsInRoom("room-2"); len(sockets) != 1 {
		t.Fatalf("expected room-2 to have 1 socket, got %v", sockets)
	}
}

func TestUnbindRoomLeavesConnectionRegistered(t *testing.T) {
	r := New()
	r.Add("s1", "u1")
	r.BindRoom("s1", "room-1")
	r.UnbindRoom("s1")

	conn, ok := r.Get("s1")
	if !ok {
		t.Fatal("expected connection to remain registered")
	}
	if conn.RoomID != "" {
		t.Fatalf("expected room cleared, got %q", conn.RoomID)
	}
	if sockets := r.SocketsInRoom("room-1"); len(sockets) != 0 {
		t.Fatalf("expected room-1 empty after unbind, got %v", sockets)
	}
}

func TestRemoveClearsAllIndexes(t *testing.T) {
	r := New()
	r.Add("s1", "u1")
	r.BindRoom("s1", "room-1")
	r.Remove("s1")

	if _, ok := r.Get("s1"); ok {
		t.Fatal("expected socket to be fully removed")
	}
	if sockets := r.SocketsForUser("u1"); len(sockets) != 0 {
		t.Fatalf("expected no sockets for u1, got %v", sockets)
	}
	if sockets := r.SocketsInRoom("room-1"); len(sockets) != 0 {
		t.Fatalf("expected no sockets in room-1, got %v", sockets)
	}
}
