package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidpulse/internal/store"
)

func TestRun_LoadsDirectory(t *testing.T) {
	dir := t.TempDir()
	csv := "State,District,Date,Total Enrolments\nBihar,Patna,2025-01-05,120\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jan.csv"), []byte(csv), 0o644))

	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.Default()

	require.NoError(t, run(context.Background(), dir, dbPath, logger))

	// Second run skips the already loaded file instead of failing.
	require.NoError(t, run(context.Background(), dir, dbPath, logger))
}

func TestRun_EnrichesBracketSumsOnce(t *testing.T) {
	dir := t.TempDir()
	csv := "District,Date,Demo Age 5 17,Demo Age 17\nPatna,2025-01-05,10,15\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brackets.csv"), []byte(csv), 0o644))

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, run(context.Background(), dir, dbPath, slog.Default()))

	st, err := store.Open(dbPath, slog.Default())
	require.NoError(t, err)
	defer st.Close()

	d, err := st.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, d.Len())

	// The demographic brackets sum to the update total exactly once.
	assert.Equal(t, "25", d.Rows[0]["total_updates"])
}

func TestRun_EmptyDirectory(t *testing.T) {
	err := run(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "test.db"), slog.Default())
	assert.NoError(t, err)
}
