// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesPragmas(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "history.db"), DefaultConfig())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var mode string
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "x.db"), DefaultConfig())
	assert.Error(t, err)
}

func TestVerifyIntegrity(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "corruptible.sqlite")

	db, err := Open(ctx, dbPath, DefaultConfig())
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY, data TEXT);")
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		_, err = db.Exec("INSERT INTO test (data) VALUES (?);", strings.Repeat("A", 100))
		require.NoError(t, err)
	}
	_, err = db.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	issues, err := VerifyIntegrity(ctx, dbPath, CheckQuick)
	require.NoError(t, err)
	assert.Nil(t, issues)

	// Overwrite the start of the second page with a pattern that is never a
	// valid b-tree page header.
	f, err := os.OpenFile(dbPath, os.O_RDWR, 0o600)
	require.NoError(t, err)
	junk := make([]byte, 100)
	for i := range junk {
		junk[i] = 0xFF
	}
	_, err = f.WriteAt(junk, 4096)
	require.NoError(t, f.Close())
	require.NoError(t, err)

	issues, err = VerifyIntegrity(ctx, dbPath, CheckFull)
	if err != nil {
		// Some corruptions surface as a query error instead of diagnostic rows.
		return
	}
	assert.NotEmpty(t, issues)
}
