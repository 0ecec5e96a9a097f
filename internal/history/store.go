// Package history keeps a SQLite log of finished sessions and what happened
// to their recordings.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

// SessionRecord is one stored session.
type SessionRecord struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Name          string    `json:"name"`
	BossID        int       `json:"boss_id,omitempty"`
	DungeonID     int       `json:"dungeon_id,omitempty"`
	DifficultyID  int       `json:"difficulty_id"`
	Difficulty    string    `json:"difficulty"`
	KeystoneLevel int       `json:"keystone_level,omitempty"`
	Outcome       string    `json:"outcome"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	RecordingFile string    `json:"recording_file,omitempty"`
	Action        string    `json:"action,omitempty"`
}

// Duration of the session.
func (r SessionRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id             TEXT PRIMARY KEY,
	kind           TEXT NOT NULL,
	name           TEXT NOT NULL,
	boss_id        INTEGER NOT NULL DEFAULT 0,
	dungeon_id     INTEGER NOT NULL DEFAULT 0,
	difficulty_id  INTEGER NOT NULL DEFAULT 0,
	difficulty     TEXT NOT NULL DEFAULT '',
	keystone_level INTEGER NOT NULL DEFAULT 0,
	outcome        TEXT NOT NULL DEFAULT '',
	started_at     INTEGER NOT NULL,
	ended_at       INTEGER NOT NULL,
	recording_file TEXT NOT NULL DEFAULT '',
	action         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS sessions_started_at ON sessions (started_at DESC);
`

// Store provides SQLite-backed session history.
type Store struct {
	db *sql.DB
}

// Open opens path, creating the file and schema when needed. An empty path
// returns ErrHistoryDisabled.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, rrerrors.ErrHistoryDisabled
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts or replaces rec.
func (s *Store) Save(ctx context.Context, rec SessionRecord) error {
	if s == nil || s.db == nil {
		return rrerrors.ErrHistoryDisabled
	}
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("session id is required")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions
		 (id, kind, name, boss_id, dungeon_id, difficulty_id, difficulty, keystone_level,
		  outcome, started_at, ended_at, recording_file, action)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, rec.Name, rec.BossID, rec.DungeonID, rec.DifficultyID, rec.Difficulty,
		rec.KeystoneLevel, rec.Outcome, toMillis(rec.StartedAt), toMillis(rec.EndedAt),
		rec.RecordingFile, rec.Action,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// List returns up to limit sessions, newest first. A limit of zero or less
// means no limit.
func (s *Store) List(ctx context.Context, limit int) ([]SessionRecord, error) {
	if s == nil || s.db == nil {
		return nil, rrerrors.ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, name, boss_id, dungeon_id, difficulty_id, difficulty, keystone_level,
		        outcome, started_at, ended_at, recording_file, action
		 FROM sessions
		 ORDER BY started_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var started, ended int64
		if err := rows.Scan(
			&rec.ID, &rec.Kind, &rec.Name, &rec.BossID, &rec.DungeonID, &rec.DifficultyID,
			&rec.Difficulty, &rec.KeystoneLevel, &rec.Outcome, &started, &ended,
			&rec.RecordingFile, &rec.Action,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.StartedAt = fromMillis(started)
		rec.EndedAt = fromMillis(ended)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
