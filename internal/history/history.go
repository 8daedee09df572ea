// Package history keeps a local SQLite journal of played tracks and
// whether each play was submitted to the server.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jfmyers9/simplay/internal/library"
)

// DefaultRetention is how long plays are kept by Cleanup.
const DefaultRetention = 30 * 24 * time.Hour

// Journal is a persistent play log backed by SQLite.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Play is one journaled track start.
type Play struct {
	ID        int64
	TrackID   string
	Title     string
	Artist    string
	Album     string
	Duration  time.Duration
	StartedAt time.Time
	Submitted bool
	Error     string
}

// Open opens or creates the journal at path. Use ":memory:" for a
// throwaway journal.
func Open(path string) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS plays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			track_id TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			album TEXT,
			duration INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			submitted BOOLEAN DEFAULT 0,
			error TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_plays_track ON plays(track_id, started_at);
		CREATE INDEX IF NOT EXISTS idx_plays_started ON plays(started_at);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// RecordPlay journals the start of t.
func (j *Journal) RecordPlay(ctx context.Context, t library.Track) error {
	_, err := j.add(ctx, t, j.now())
	return err
}

func (j *Journal) add(ctx context.Context, t library.Track, at time.Time) (int64, error) {
	result, err := j.db.ExecContext(ctx, `
		INSERT INTO plays (track_id, title, artist, album, duration, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Artist, t.Album, t.Duration, at.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert play: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}
	return id, nil
}

// MarkSubmitted records the submission outcome on the most recent play of
// trackID. A nil submitErr marks the play submitted.
func (j *Journal) MarkSubmitted(ctx context.Context, trackID string, submitErr error) error {
	var (
		submitted bool
		errMsg    sql.NullString
	)
	if submitErr == nil {
		submitted = true
	} else {
		errMsg = sql.NullString{String: submitErr.Error(), Valid: true}
	}

	result, err := j.db.ExecContext(ctx, `
		UPDATE plays
		SET submitted = ?, error = ?
		WHERE id = (
			SELECT id FROM plays
			WHERE track_id = ?
			ORDER BY started_at DESC, id DESC
			LIMIT 1
		)
	`, submitted, errMsg, trackID)
	if err != nil {
		return fmt.Errorf("failed to mark play: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no play recorded for track %s", trackID)
	}
	return nil
}

// Recent returns up to limit plays, newest first. A limit of 0 returns
// every play.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Play, error) {
	query := `
		SELECT id, track_id, title, artist, COALESCE(album, ''), duration,
			started_at, submitted, COALESCE(error, '')
		FROM plays
		ORDER BY started_at DESC, id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var plays []Play
	for rows.Next() {
		var (
			p            Play
			durationSecs int64
			startedUnix  int64
		)
		if err := rows.Scan(
			&p.ID,
			&p.TrackID,
			&p.Title,
			&p.Artist,
			&p.Album,
			&durationSecs,
			&startedUnix,
			&p.Submitted,
			&p.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		p.Duration = time.Duration(durationSecs) * time.Second
		p.StartedAt = time.Unix(startedUnix, 0)
		plays = append(plays, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plays: %w", err)
	}
	return plays, nil
}

// Cleanup removes plays older than maxAge and returns how many were deleted.
func (j *Journal) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := j.now().Add(-maxAge).Unix()

	result, err := j.db.ExecContext(ctx, "DELETE FROM plays WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old plays: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Count returns the number of journaled plays. If pendingOnly is set, only
// plays not yet submitted are counted.
func (j *Journal) Count(ctx context.Context, pendingOnly bool) (int, error) {
	query := "SELECT COUNT(*) FROM plays"
	if pendingOnly {
		query += " WHERE submitted = 0"
	}

	var count int
	if err := j.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}
	return count, nil
}
