// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMasterList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.txt")
	require.NoError(t, os.WriteFile(path, []byte("ESPN\n\n# sports\nHBO\r\n"), 0o600))

	lines, err := ReadMasterList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ESPN", "", "# sports", "HBO"}, lines)

	_, err = ReadMasterList(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadAliases(t *testing.T) {
	dir := t.TempDir()
	aliasFile := filepath.Join(dir, "aliases.yaml")
	require.NoError(t, os.WriteFile(aliasFile, []byte("I10021.json.schedulesdirect.org: HBO\ncnn.us: CNN\n"), 0o600))

	got, err := LoadAliases(AppConfig{
		AliasFile: aliasFile,
		Aliases:   map[string]string{"cnn.us": "CNN International", "espn.us2": "ESPN"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"I10021.json.schedulesdirect.org": "HBO",
		"cnn.us":                          "CNN International",
		"espn.us2":                        "ESPN",
	}, got)

	got, err = LoadAliases(AppConfig{})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, os.WriteFile(aliasFile, []byte("- not\n- a map\n"), 0o600))
	_, err = LoadAliases(AppConfig{AliasFile: aliasFile})
	assert.Error(t, err)
}
