package roomstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"slaphard/internal/room"
)

// roomTTL bounds how long an idle room's Redis keys survive. Every
// SaveRoom call refreshes it, so an active room never expires mid-match;
// an abandoned one is reclaimed without an explicit cleanup job.
const roomTTL = 6 * time.Hour

// userRoomTTL is shorter: a stale user->room pointer should not outlive a
// forgotten disconnect by more than a few minutes.
const userRoomTTL = 10 * time.Minute

func roomKey(id string) string    { return fmt.Sprintf("room:%s:state", id) }
func codeKey(code string) string  { return fmt.Sprintf("roomcode:%s", code) }
func userRoomKey(u string) string { return fmt.Sprintf("user:%s:room", u) }

// allRoomsKey is a set of every known room id, maintained alongside the
// per-room keys above so ListJoinableRooms never needs a SCAN over the
// whole keyspace.
const allRoomsKey = "rooms:all"

// RedisStore is the clustered Store implementation: every node reads and
// writes the same keys, so a client can reconnect to any node mid-match.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore parses redisURL (redis://[:password@]host:port/db) and
// verifies connectivity with a Ping before returning.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("roomstore: parsing redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("roomstore: connecting to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) GetRoomByID(ctx context.Context, roomID string) (room.RoomState, error) {
	data, err := s.client.Get(ctx, roomKey(roomID)).Bytes()
	if err == redis.Nil {
		return room.RoomState{}, ErrNotFound
	}
	if err != nil {
		return room.RoomState{}, fmt.Errorf("roomstore: get room %s: %w", roomID, err)
	}
	var r room.RoomState
	if err := json.Unmarshal(data, &r); err != nil {
		return room.RoomState{}, fmt.Errorf("roomstore: decode room %s: %w", roomID, err)
	}
	return r, nil
}

func (s *RedisStore) GetRoomByCode(ctx context.Context, code string) (room.RoomState, error) {
	roomID, err := s.client.Get(ctx, codeKey(code)).Result()
	if err == redis.Nil {
		return room.RoomState{}, ErrNotFound
	}
	if err != nil {
		return room.RoomState{}, fmt.Errorf("roomstore: resolve code %s: %w", code, err)
	}
	return s.GetRoomByID(ctx, roomID)
}

func (s *RedisStore) SaveRoom(ctx context.Context, r room.RoomState) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("roomstore: encode room %s: %w", r.RoomID, err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, roomKey(r.RoomID), data, roomTTL)
	pipe.Set(ctx, codeKey(r.RoomCode), r.RoomID, roomTTL)
	pipe.SAdd(ctx, allRoomsKey, r.RoomID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("roomstore: save room %s: %w", r.RoomID, err)
	}
	return nil
}

func (s *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	r, err := s.GetRoomByID(ctx, roomID)
	if err != nil && err != ErrNotFound {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, roomKey(roomID))
	if r.RoomCode != "" {
		pipe.Del(ctx, codeKey(r.RoomCode))
	}
	pipe.SRem(ctx, allRoomsKey, roomID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("roomstore: delete room %s: %w", roomID, err)
	}
	return nil
}

func (s *RedisStore) RoomCodeExists(ctx context.Context, code string) (bool, error) {
	n, err := s.client.Exists(ctx, codeKey(code)).Result()
	if err != nil {
		return false, fmt.Errorf("roomstore: check code %s: %w", code, err)
	}
	return n > 0, nil
}

func (s *RedisStore) SetUserRoom(ctx context.Context, userID, roomID string) error {
	if err := s.client.Set(ctx, userRoomKey(userID), roomID, userRoomTTL).Err(); err != nil {
		return fmt.Errorf("roomstore: set user room for %s: %w", userID, err)
	}
	return nil
}

func (s *RedisStore) GetUserRoom(ctx context.Context, userID string) (string, error) {
	roomID, err := s.client.Get(ctx, userRoomKey(userID)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("roomstore: get user room for %s: %w", userID, err)
	}
	return roomID, nil
}

func (s *RedisStore) ClearUserRoom(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, userRoomKey(userID)).Err(); err != nil {
		return fmt.Errorf("roomstore: clear user room for %s: %w", userID, err)
	}
	return nil
}

// ListJoinableRooms walks the allRoomsKey set rather than SCANning the
// whole keyspace, fetching each room and keeping only those still in the
// lobby with a free seat. A room id that has expired or been deleted
// between the SMEMBERS call and the fetch is skipped rather than erroring.
func (s *RedisStore) ListJoinableRooms(ctx context.Context) ([]RoomSummary, error) {
	ids, err := s.client.SMembers(ctx, allRoomsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("roomstore: list room ids: %w", err)
	}
	out := make([]RoomSummary, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetRoomByID(ctx, id)
		if err != nil {
			continue
		}
		if r.Status != room.StatusLobby || len(r.Players) >= r.Settings.MaxPlayers {
			continue
		}
		hostName := ""
		if host := r.PlayerByUserID(r.HostUserID); host != nil {
			hostName = host.DisplayName
		}
		out = append(out, RoomSummary{
			RoomCode:    r.RoomCode,
			PlayerCount: len(r.Players),
			MaxPlayers:  r.Settings.MaxPlayers,
			HostName:    hostName,
		})
	}
	return out, nil
}
