package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"slaphard/internal/room"
)

// schema is applied by an operator-run migration, not by this package;
// it is documented here because every query below depends on it.
//
//	CREATE TABLE rooms (
//	    room_id TEXT PRIMARY KEY,
//	    room_code TEXT NOT NULL,
//	    status TEXT NOT NULL,
//	    host_user_id TEXT NOT NULL,
//	    player_count INT NOT NULL,
//	    deleted_at TIMESTAMPTZ,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE room_snapshots (
//	    room_id TEXT NOT NULL,
//	    version BIGINT NOT NULL,
//	    snapshot JSONB NOT NULL,
//	    recorded_at TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (room_id, version)
//	);
//	CREATE TABLE matches (
//	    match_id TEXT PRIMARY KEY,
//	    room_id TEXT NOT NULL,
//	    player_user_ids JSONB NOT NULL,
//	    winner_user_id TEXT,
//	    started_at TIMESTAMPTZ NOT NULL,
//	    finished_at TIMESTAMPTZ
//	);
//	CREATE TABLE match_events (
//	    match_id TEXT NOT NULL,
//	    sequence BIGINT NOT NULL,
//	    event_type TEXT NOT NULL,
//	    payload JSONB NOT NULL,
//	    server_time BIGINT NOT NULL,
//	    recorded_at TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (match_id, sequence)
//	);
//
// PostgresJournal persists the audit trail described above. A
// failed write is retried exactly once after a short backoff; if the
// retry also fails the write is logged and dropped rather than blocking
// the room's command queue, since the journal is an audit trail and not
// the source of truth for live gameplay.
type PostgresJournal struct {
	db  *sql.DB
	log *logrus.Entry
}

// NewPostgresJournal opens dsn and verifies connectivity.
func NewPostgresJournal(dsn string, log *logrus.Entry) (*PostgresJournal, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("persistence: opening postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("persistence: pinging postgres: %w", err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &PostgresJournal{db: db, log: log.WithField("component", "persistence")}, nil
}

// Close releases the connection pool.
func (j *PostgresJournal) Close() error {
	return j.db.Close()
}

// withRetry runs op, retries once after a short backoff on failure, and
// logs-and-swallows a second failure rather than propagating it.
func (j *PostgresJournal) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil {
		return nil
	}
	j.log.WithError(err).WithField("op", op).Warn("persistence write failed, retrying once")

	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return nil
	}

	if err := fn(ctx); err != nil {
		j.log.WithError(err).WithField("op", op).Error("persistence write failed on retry, dropping")
	}
	return nil
}

func (j *PostgresJournal) UpsertRoomMetadata(ctx context.Context, r room.RoomState) error {
	return j.withRetry(ctx, "upsert_room_metadata", func(ctx context.Context) error {
		_, err := j.db.ExecContext(ctx, `
INSERT INTO rooms (room_id, room_code, status, host_user_id, player_count, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (room_id) DO UPDATE SET
    room_code = EXCLUDED.room_code,
    status = EXCLUDED.status,
    host_user_id = EXCLUDED.host_user_id,
    player_count = EXCLUDED.player_count,
    updated_at = NOW()
`, r.RoomID, r.RoomCode, string(r.Status), r.HostUserID, len(r.Players))
		return err
	})
}

func (j *PostgresJournal) WriteRoomSnapshot(ctx context.Context, r room.RoomState) error {
	snapshot, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("persistence: encoding room snapshot: %w", err)
	}
	return j.withRetry(ctx, "write_room_snapshot", func(ctx context.Context) error {
		_, err := j.db.ExecContext(ctx, `
INSERT INTO room_snapshots (room_id, version, snapshot, recorded_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (room_id, version) DO NOTHING
`, r.RoomID, r.Version, snapshot)
		return err
	})
}

func (j *PostgresJournal) MarkRoomDeleted(ctx context.Context, roomID string, at time.Time) error {
	return j.withRetry(ctx, "mark_room_deleted", func(ctx context.Context) error {
		_, err := j.db.ExecContext(ctx, `
UPDATE rooms SET deleted_at = $2, updated_at = $2 WHERE room_id = $1
`, roomID, at)
		return err
	})
}

func (j *PostgresJournal) StartMatch(ctx context.Context, matchID, roomID string, playerUserIDs []string, startedAt time.Time) error {
	players, err := json.Marshal(playerUserIDs)
	if err != nil {
		return fmt.Errorf("persistence: encoding match players: %w", err)
	}
	return j.withRetry(ctx, "start_match", func(ctx context.Context) error {
		_, err := j.db.ExecContext(ctx, `
INSERT INTO matches (match_id, room_id, player_user_ids, started_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (match_id) DO NOTHING
`, matchID, roomID, players, startedAt)
		return err
	})
}

func (j *PostgresJournal) FinishMatch(ctx context.Context, matchID, winnerUserID string, finishedAt time.Time) error {
	return j.withRetry(ctx, "finish_match", func(ctx context.Context) error {
		_, err := j.db.ExecContext(ctx, `
UPDATE matches SET winner_user_id = $2, finished_at = $3 WHERE match_id = $1
`, matchID, winnerUserID, finishedAt)
		return err
	})
}

func (j *PostgresJournal) AppendMatchEvent(ctx context.Context, e MatchEvent) error {
	return j.withRetry(ctx, "append_match_event", func(ctx context.Context) error {
		_, err := j.db.ExecContext(ctx, `
INSERT INTO match_events (match_id, sequence, event_type, payload, server_time, recorded_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (match_id, sequence) DO NOTHING
`, e.MatchID, e.Sequence, e.EventType, e.Payload, e.ServerTime)
		return err
	})
}
