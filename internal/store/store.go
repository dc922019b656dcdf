// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuiread/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for reading sessions and resume records.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			text_id TEXT NOT NULL,
			device TEXT NOT NULL,
			mode TEXT NOT NULL,
			chunk_size INTEGER NOT NULL,
			target_wpm REAL NOT NULL,
			tokens INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			paused_ms INTEGER NOT NULL,
			realized_wpm INTEGER NOT NULL,
			too_short INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS resume (
			device TEXT PRIMARY KEY,
			raw_text TEXT NOT NULL,
			cursor INTEGER NOT NULL,
			mode TEXT NOT NULL,
			chunk_size INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_text_id ON sessions(text_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finalized session.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) error {
	if rec.EndTime == nil {
		return fmt.Errorf("session %s is not finalized", rec.ID)
	}
	tooShort := 0
	if rec.TooShort {
		tooShort = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, text_id, device, mode, chunk_size, target_wpm, tokens, started_at, ended_at, duration_ms, paused_ms, realized_wpm, too_short)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.TextID,
		rec.Device,
		rec.Mode.String(),
		rec.ChunkSize,
		rec.TargetWPM,
		rec.Tokens,
		rec.StartTime.Format(time.RFC3339Nano),
		rec.EndTime.Format(time.RFC3339Nano),
		rec.DurationMs,
		rec.PausedMs,
		rec.RealizedWPM,
		tooShort,
	)
	return err
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Device != "" {
		clauses = append(clauses, "device = ?")
		args = append(args, cfg.Device)
	}
	if cfg.TextID != "" {
		clauses = append(clauses, "text_id = ?")
		args = append(args, cfg.TextID)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, text_id, device, mode, chunk_size, ended_at, tokens, target_wpm, realized_wpm, duration_ms, too_short
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var mode, endedAt string
		var tooShort int
		if err := rows.Scan(&agg.SessionID, &agg.TextID, &agg.Device, &mode, &agg.ChunkSize, &endedAt, &agg.Tokens, &agg.TargetWPM, &agg.RealizedWPM, &agg.DurationMs, &tooShort); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Mode, err = model.ParseMode(mode)
		if err != nil {
			return nil, err
		}
		agg.TooShort = tooShort != 0
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListTexts aggregates sessions per text, most recently read first.
func (s *Store) ListTexts(ctx context.Context, device string) ([]model.TextAggregate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text_id, COUNT(*), MAX(CASE WHEN too_short = 0 THEN realized_wpm ELSE 0 END), MAX(ended_at)
		 FROM sessions
		 WHERE (? = '' OR device = ?)
		 GROUP BY text_id
		 ORDER BY MAX(ended_at) DESC`, device, device)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.TextAggregate
	for rows.Next() {
		var agg model.TextAggregate
		var lastEnded string
		if err := rows.Scan(&agg.TextID, &agg.Sessions, &agg.BestWPM, &lastEnded); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, lastEnded)
		if err != nil {
			return nil, err
		}
		agg.LastEndedAt = parsed
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SaveResume replaces the resume record for rec.Device.
func (s *Store) SaveResume(ctx context.Context, rec model.ResumeRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resume (device, raw_text, cursor, mode, chunk_size, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(device) DO UPDATE SET
			raw_text = excluded.raw_text,
			cursor = excluded.cursor,
			mode = excluded.mode,
			chunk_size = excluded.chunk_size,
			updated_at = excluded.updated_at`,
		rec.Device,
		rec.RawText,
		rec.Cursor,
		rec.Mode.String(),
		rec.ChunkSize,
		rec.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// LoadResume returns the resume record for device, if any.
func (s *Store) LoadResume(ctx context.Context, device string) (model.ResumeRecord, bool, error) {
	var rec model.ResumeRecord
	var mode, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT device, raw_text, cursor, mode, chunk_size, updated_at FROM resume WHERE device = ?`,
		device,
	).Scan(&rec.Device, &rec.RawText, &rec.Cursor, &mode, &rec.ChunkSize, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ResumeRecord{}, false, nil
	}
	if err != nil {
		return model.ResumeRecord{}, false, err
	}
	rec.Mode, err = model.ParseMode(mode)
	if err != nil {
		return model.ResumeRecord{}, false, err
	}
	rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return model.ResumeRecord{}, false, err
	}
	return rec, true, nil
}

// ClearResume removes the resume record for device.
func (s *Store) ClearResume(ctx context.Context, device string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM resume WHERE device = ?`, device)
	return err
}
