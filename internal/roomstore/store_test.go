package roomstore

import (
	"context"
	"testing"

	"slaphard/internal/room"
)

// runStoreContractTests exercises the Store interface's observable
// behavior; RedisStore satisfies the identical contract but needs a live
// server, so only MemoryStore is wired into CI here.
func runStoreContractTests(t *testing.T, newStore func() Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("round trips by id and code", func(t *testing.T) {
		s := newStore()
		r := room.RoomState{RoomID: "r1", RoomCode: "ABC123", Status: room.StatusLobby}
		if err := s.SaveRoom(ctx, r); err != nil {
			t.Fatalf("SaveRoom: %v", err)
		}
		byID, err := s.GetRoomByID(ctx, "r1")
		if err != nil {
			t.Fatalf("GetRoomByID: %v", err)
		}
		if byID.RoomCode != "ABC123" {
			t.Fatalf("expected code ABC123, got %s", byID.RoomCode)
		}
		byCode, err := s.GetRoomByCode(ctx, "ABC123")
		if err != nil {
			t.Fatalf("GetRoomByCode: %v", err)
		}
		if byCode.RoomID != "r1" {
			t.Fatalf("expected id r1, got %s", byCode.RoomID)
		}
	})

	t.Run("missing room is ErrNotFound", func(t *testing.T) {
		s := newStore()
		if _, err := s.GetRoomByID(ctx, "nope"); err != ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := s.GetRoomByCode(ctx, "NOPE00"); err != ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete room removes both indexes", func(t *testing.T) {
		s := newStore()
		_ = s.SaveRoom(ctx, room.RoomState{RoomID: "r2", RoomCode: "ZZZ999"})
		if err := s.DeleteRoom(ctx, "r2"); err != nil {
			t.Fatalf("DeleteRoom: %v", err)
		}
		if _, err := s.GetRoomByID(ctx, "r2"); err != ErrNotFound {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if _, err := s.GetRoomByCode(ctx, "ZZZ999"); err != ErrNotFound {
			t.Fatalf("expected code index cleared after delete, got %v", err)
		}
	})

	t.Run("room code existence check", func(t *testing.T) {
		s := newStore()
		taken, err := s.RoomCodeExists(ctx, "FRESH1")
		if err != nil || taken {
			t.Fatalf("expected unused code to report false, got taken=%v err=%v", taken, err)
		}
		_ = s.SaveRoom(ctx, room.RoomState{RoomID: "r3", RoomCode: "FRESH1"})
		taken, err = s.RoomCodeExists(ctx, "FRESH1")
		if err != nil || !taken {
			t.Fatalf("expected saved code to report true, got taken=%v err=%v", taken, err)
		}
	})

	t.Run("user room index lifecycle", func(t *testing.T) {
		s := newStore()
		if _, err := s.GetUserRoom(ctx, "u1"); err != ErrNotFound {
			t.Fatalf("expected ErrNotFound before SetUserRoom, got %v", err)
		}
		if err := s.SetUserRoom(ctx, "u1", "r4"); err != nil {
			t.Fatalf("SetUserRoom: %v", err)
		}
		roomID, err := s.GetUserRoom(ctx, "u1")
		if err != nil || roomID != "r4" {
			t.Fatalf("expected r4, got %s err=%v", roomID, err)
		}
		if err := s.ClearUserRoom(ctx, "u1"); err != nil {
			t.Fatalf("ClearUserRoom: %v", err)
		}
		if _, err := s.GetUserRoom(ctx, "u1"); err != ErrNotFound {
			t.Fatalf("expected ErrNotFound after clear, got %v", err)
		}
	})

	t.Run("ListJoinableRooms excludes full and in-game rooms", func(t *testing.T) {
		s := newStore()
		_ = s.SaveRoom(ctx, room.RoomState{
			RoomID:   "joinable",
			RoomCode: "JOIN01",
			Status:   room.StatusLobby,
			HostUserID: "host1",
			Players: []room.PublicPlayer{
				{UserID: "host1", DisplayName: "Host", IsHost: true},
			},
			Settings: room.Settings{MaxPlayers: 4},
		})
		_ = s.SaveRoom(ctx, room.RoomState{
			RoomID:   "full",
			RoomCode: "FULL01",
			Status:   room.StatusLobby,
			Players: []room.PublicPlayer{{UserID: "a"}, {UserID: "b"}},
			Settings: room.Settings{MaxPlayers: 2},
		})
		_ = s.SaveRoom(ctx, room.RoomState{
			RoomID:   "ingame",
			RoomCode: "GAME01",
			Status:   room.StatusInGame,
			Players:  []room.PublicPlayer{{UserID: "a"}},
			Settings: room.Settings{MaxPlayers: 4},
		})

		summaries, err := s.ListJoinableRooms(ctx)
		if err != nil {
			t.Fatalf("ListJoinableRooms: %v", err)
		}
		if len(summaries) != 1 || summaries[0].RoomCode != "JOIN01" {
			t.Fatalf("expected only JOIN01 to be joinable, got %+v", summaries)
		}
		if summaries[0].HostName != "Host" {
			t.Fatalf("expected host name to be resolved, got %+v", summaries[0])
		}
	})

	t.Run("GetRoomByID returns an independent copy", func(t *testing.T) {
		s := newStore()
		_ = s.SaveRoom(ctx, room.RoomState{
			RoomID:  "r5",
			Players: []room.PublicPlayer{{UserID: "u1", SeatIndex: 0}},
		})
		first, _ := s.GetRoomByID(ctx, "r5")
		first.Players[0].SeatIndex = 99
		second, _ := s.GetRoomByID(ctx, "r5")
		if second.Players[0].SeatIndex != 0 {
			t.Fatalf("mutating a returned RoomState leaked into the store: %+v", second.Players[0])
		}
	})
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContractTests(t, func() Store { return NewMemoryStore() })
}
