/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/promptarena/arena/arena"
)

// SQLiteStore implements Store on a SQLite database.
//
// Increments use INSERT ... ON CONFLICT DO UPDATE so each counter bump is a
// single atomic statement; callers never read-modify-write.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the preference database at dbPath.
// The parent directory is created if it does not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports one writer at a time; a single pooled connection
	// serializes concurrent upserts instead of surfacing busy errors.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return store, nil
}

// migrate creates the preference_stats table if it does not exist.
func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preference_stats (
		user_id  TEXT NOT NULL,
		category TEXT NOT NULL,
		backend  TEXT NOT NULL,
		wins     INTEGER NOT NULL DEFAULT 0,
		total    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, category, backend)
	);

	CREATE INDEX IF NOT EXISTS idx_preference_stats_user_category
		ON preference_stats(user_id, category);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordOutcome implements Store.
func (s *SQLiteStore) RecordOutcome(ctx context.Context, userID string, category arena.Category, participants []arena.BackendID, winner arena.BackendID) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	if len(participants) == 0 {
		return errors.New("at least one participant is required")
	}

	won := false
	for _, id := range participants {
		if id == winner {
			won = true
			break
		}
	}
	if !won {
		return fmt.Errorf("winner %q is not among participants", winner)
	}

	upsert := `
	INSERT INTO preference_stats (user_id, category, backend, wins, total)
	VALUES (?, ?, ?, ?, 1)
	ON CONFLICT(user_id, category, backend) DO UPDATE SET
		wins  = wins + excluded.wins,
		total = total + 1
	`

	for _, id := range participants {
		win := 0
		if id == winner {
			win = 1
		}
		if _, err := s.db.ExecContext(ctx, upsert, userID, string(category), string(id), win); err != nil {
			return fmt.Errorf("upsert stat for backend %q: %w", id, err)
		}
	}
	return nil
}

// Stats implements Store.
func (s *SQLiteStore) Stats(ctx context.Context, userID string, category arena.Category) ([]arena.Stat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT backend, wins, total
		FROM preference_stats
		WHERE user_id = ? AND category = ?
		ORDER BY backend`,
		userID, string(category))
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []arena.Stat
	for rows.Next() {
		var backend string
		var stat arena.Stat
		if err := rows.Scan(&backend, &stat.Wins, &stat.Total); err != nil {
			return nil, fmt.Errorf("scan stat row: %w", err)
		}
		stat.Backend = arena.BackendID(backend)
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stat rows: %w", err)
	}
	return stats, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
