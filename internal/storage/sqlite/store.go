// Package sqlite provides the SQLite-backed Store used by the daemon.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/respectgame/engine/internal/game/domain"
	"github.com/respectgame/engine/internal/game/event"
	sqlitemigrate "github.com/respectgame/engine/internal/platform/storage/sqlitemigrate"
	"github.com/respectgame/engine/internal/storage"
	"github.com/respectgame/engine/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists the aggregate as a JSON snapshot row and the events as an
// append-only journal, written together in one transaction.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}

	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load implements storage.Store.
func (s *Store) Load(ctx context.Context) (*domain.GameState, uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var data string
	row := s.sqlDB.QueryRowContext(ctx, "SELECT data FROM game_state WHERE id = 1")
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("load game state: %w", err)
	}

	state := &domain.GameState{}
	if err := json.Unmarshal([]byte(data), state); err != nil {
		return nil, 0, fmt.Errorf("decode game state: %w", err)
	}

	var lastSeq uint64
	row = s.sqlDB.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM events")
	if err := row.Scan(&lastSeq); err != nil {
		return nil, 0, fmt.Errorf("load last event seq: %w", err)
	}

	return state, lastSeq, nil
}

// Save implements storage.Store. The snapshot replacement and the event
// appends commit in a single transaction.
func (s *Store) Save(ctx context.Context, state *domain.GameState, events []event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode game state: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO game_state (id, data, updated_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
`, string(data), time.Now().UTC().UnixMilli()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save game state: %w", err)
	}

	for _, ev := range events {
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode event %d payload: %w", ev.Seq, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO events (seq, type, round, timestamp, payload) VALUES (?, ?, ?, ?, ?)",
			ev.Seq, string(ev.Type), ev.Round, ev.Timestamp.UnixMilli(), string(payload),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append event %d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

// Events implements storage.Store. Loaded payloads come back as raw JSON.
func (s *Store) Events(ctx context.Context, after uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := "SELECT seq, type, round, timestamp, payload FROM events WHERE seq > ? ORDER BY seq"
	args := []any{after}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		var (
			ev      event.Event
			typ     string
			ts      int64
			payload sql.NullString
		)
		if err := rows.Scan(&ev.Seq, &typ, &ev.Round, &ts, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Type = event.Type(typ)
		ev.Timestamp = time.UnixMilli(ts).UTC()
		if payload.Valid && payload.String != "" && payload.String != "null" {
			ev.Payload = json.RawMessage(payload.String)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

var _ storage.Store = (*Store)(nil)
