package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renlu07/wolf-arena/internal/engine"
	"github.com/renlu07/wolf-arena/internal/platform/logger"
)

func TestSaveAndReadBackMatch(t *testing.T) {
	db, err := InitSQLite(filepath.Join(t.TempDir(), "arena.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := NewMatchRepository(db, logger.NewNop())
	rec := engine.MatchRecord{
		Winner: "GOOD",
		Days:   4,
		Seats: []engine.MatchSeat{
			{ID: 1, Name: "Victor", Role: "Werewolf", Model: "m1", Survived: false},
			{ID: 2, Name: "Lily", Role: "Seer", Model: "m2", Survived: true},
		},
		Highlights: []string{"Night 1: the witch saved Player 2 (Lily)."},
	}
	require.NoError(t, repo.SaveMatch(context.Background(), rec))

	var winner string
	var days int
	require.NoError(t, db.QueryRow(`SELECT winner, days FROM matches`).Scan(&winner, &days))
	assert.Equal(t, "GOOD", winner)
	assert.Equal(t, 4, days)

	var seats int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM match_players`).Scan(&seats))
	assert.Equal(t, 2, seats)

	var line string
	require.NoError(t, db.QueryRow(`SELECT line FROM match_highlights WHERE position = 0`).Scan(&line))
	assert.Contains(t, line, "witch saved")
}

func TestSchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.db")
	db, err := InitSQLite(path)
	require.NoError(t, err)
	db.Close()

	db, err = InitSQLite(path)
	require.NoError(t, err)
	db.Close()
}
