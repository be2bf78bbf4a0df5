package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const stateChannel = "game_state_updates"

// PostgresStore persists snapshots in a single jsonb table and uses
// LISTEN/NOTIFY to fan writes out to subscribers in other processes.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func NewPostgresStore(ctx context.Context, databaseURL string, log *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	s := &PostgresStore{pool: pool, log: log}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_states (
			room_code  text PRIMARY KEY,
			version    integer NOT NULL,
			state      jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create game_states table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Write(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO game_states (room_code, version, state, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (room_code)
		DO UPDATE SET version = $2, state = $3, updated_at = now()`,
		rec.RoomCode, rec.Version, payload)
	if err != nil {
		return fmt.Errorf("write state for %s: %w", rec.RoomCode, err)
	}
	if _, err := s.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, stateChannel, rec.RoomCode); err != nil {
		return fmt.Errorf("notify state write for %s: %w", rec.RoomCode, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, roomCode string) (Record, bool, error) {
	var rec Record
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT version, state FROM game_states WHERE room_code = $1`, roomCode).
		Scan(&rec.Version, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("load state for %s: %w", roomCode, err)
	}
	if err := json.Unmarshal(payload, &rec.State); err != nil {
		return Record{}, false, fmt.Errorf("decode state for %s: %w", roomCode, err)
	}
	rec.RoomCode = roomCode
	return rec, true, nil
}

// Subscribe holds a dedicated connection on LISTEN and re-reads the row on
// every notification, so subscribers always observe a complete snapshot.
func (s *PostgresStore) Subscribe(ctx context.Context, roomCode string) (<-chan Record, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, `LISTEN `+stateChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen on %s: %w", stateChannel, err)
	}

	ch := make(chan Record, 1)
	go func() {
		defer conn.Release()
		defer close(ch)
		for {
			note, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Warn("state subscription lost", zap.String("room", roomCode), zap.Error(err))
				}
				return
			}
			if note.Payload != roomCode {
				continue
			}
			rec, ok, err := s.Load(ctx, roomCode)
			if err != nil || !ok {
				continue
			}
			select {
			case ch <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (s *PostgresStore) Delete(ctx context.Context, roomCode string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM game_states WHERE room_code = $1`, roomCode)
	if err != nil {
		return fmt.Errorf("delete state for %s: %w", roomCode, err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
