// Package storage archives finished matches in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/renlu07/wolf-arena/internal/engine"
	"github.com/renlu07/wolf-arena/internal/platform/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	finished_at TEXT NOT NULL,
	winner      TEXT NOT NULL,
	days        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS match_players (
	match_id INTEGER NOT NULL REFERENCES matches(id),
	seat     INTEGER NOT NULL,
	name     TEXT NOT NULL,
	role     TEXT NOT NULL,
	model    TEXT NOT NULL,
	survived INTEGER NOT NULL,
	PRIMARY KEY (match_id, seat)
);
CREATE TABLE IF NOT EXISTS match_highlights (
	match_id INTEGER NOT NULL REFERENCES matches(id),
	position INTEGER NOT NULL,
	line     TEXT NOT NULL,
	PRIMARY KEY (match_id, position)
);
`

// InitSQLite opens the archive database and applies the schema.
func InitSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The archive is written by one goroutine at a time; a single
	// connection sidesteps SQLITE_BUSY entirely.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// MatchRepository persists finished matches. Implements engine.MatchStore.
type MatchRepository struct {
	db  *sql.DB
	log *logger.Logger
}

// NewMatchRepository wraps an opened archive database.
func NewMatchRepository(db *sql.DB, log *logger.Logger) *MatchRepository {
	return &MatchRepository{db: db, log: log}
}

// SaveMatch writes one finished match and its seats and highlights in a
// single transaction.
func (r *MatchRepository) SaveMatch(ctx context.Context, rec engine.MatchRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO matches (finished_at, winner, days) VALUES (?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), rec.Winner, rec.Days)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	matchID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("match id: %w", err)
	}

	for _, seat := range rec.Seats {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO match_players (match_id, seat, name, role, model, survived) VALUES (?, ?, ?, ?, ?, ?)`,
			matchID, seat.ID, seat.Name, seat.Role, seat.Model, boolToInt(seat.Survived)); err != nil {
			return fmt.Errorf("insert seat %d: %w", seat.ID, err)
		}
	}
	for i, line := range rec.Highlights {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO match_highlights (match_id, position, line) VALUES (?, ?, ?)`,
			matchID, i, line); err != nil {
			return fmt.Errorf("insert highlight %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Info("match archived", "id", matchID, "winner", rec.Winner, "days", rec.Days)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ engine.MatchStore = (*MatchRepository)(nil)
