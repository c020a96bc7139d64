// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry keeps a local ledger of per-turn token usage. The
// ledger never leaves the machine; it exists so `modelschat config`
// and the TUI footer can show what a session cost in tokens.
package telemetry

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/modelschat-tui/internal/model"
)

// TurnUsage is one recorded chat turn.
type TurnUsage struct {
	Timestamp      time.Time
	Provider       string
	Model          string
	PromptTokens   int
	ResponseTokens int
	TotalTokens    int
}

// Totals aggregates the whole ledger.
type Totals struct {
	Turns          int
	PromptTokens   int
	ResponseTokens int
	TotalTokens    int
}

const schema = `
CREATE TABLE IF NOT EXISTS usage_log (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    ts              INTEGER NOT NULL,
    provider        TEXT    NOT NULL,
    model           TEXT    NOT NULL,
    prompt_tokens   INTEGER NOT NULL,
    response_tokens INTEGER NOT NULL,
    total_tokens    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_ts ON usage_log(ts);
`

// =============================================================================
// STORE
// =============================================================================

// Store is the sqlite-backed usage ledger. Safe for concurrent use;
// database/sql serializes access.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize usage ledger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordUsage stores one turn. Failures are logged, not surfaced; the
// ledger must never break a chat turn that already succeeded.
func (s *Store) RecordUsage(provider model.Provider, stats model.TokenStats) {
	_, err := s.db.Exec(
		`INSERT INTO usage_log (ts, provider, model, prompt_tokens, response_tokens, total_tokens)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(), string(provider), stats.Model,
		stats.PromptTokens, stats.ResponseTokens, stats.TotalTokens,
	)
	if err != nil {
		log.Printf("usage ledger: %v", err)
	}
}

// Totals returns ledger-wide aggregates.
func (s *Store) Totals() (Totals, error) {
	var t Totals
	row := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(prompt_tokens), 0),
		        COALESCE(SUM(response_tokens), 0),
		        COALESCE(SUM(total_tokens), 0)
		 FROM usage_log`)
	if err := row.Scan(&t.Turns, &t.PromptTokens, &t.ResponseTokens, &t.TotalTokens); err != nil {
		return Totals{}, fmt.Errorf("failed to aggregate usage: %w", err)
	}
	return t, nil
}

// Recent returns the latest n turns, newest first.
func (s *Store) Recent(n int) ([]TurnUsage, error) {
	rows, err := s.db.Query(
		`SELECT ts, provider, model, prompt_tokens, response_tokens, total_tokens
		 FROM usage_log ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	var out []TurnUsage
	for rows.Next() {
		var u TurnUsage
		var ts int64
		if err := rows.Scan(&ts, &u.Provider, &u.Model, &u.PromptTokens, &u.ResponseTokens, &u.TotalTokens); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		u.Timestamp = time.Unix(ts, 0)
		out = append(out, u)
	}
	return out, rows.Err()
}
