// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package jobs

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ManuGH/epgmerge/internal/epg"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTV() *epg.TV {
	return &epg.TV{
		Generator: epg.Generator,
		Channels:  []epg.Channel{{ID: "hbo.us2", DisplayName: []string{"HBO"}}},
		Programs: []epg.Programme{{
			Start:   "20250101060000 +0000",
			Channel: "hbo.us2",
			Titles:  []epg.Title{{Text: "Movie"}},
		}},
	}
}

func gunzipFile(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(data)
}

func TestWriteOutput_Gzip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "merged.xml.gz")

	require.NoError(t, writeOutput(p, sampleTV()))

	doc := gunzipFile(t, p)
	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	assert.Contains(t, doc, `generator-info-name="epgmerge"`)
	assert.Contains(t, doc, `<channel id="hbo.us2">`)
	assert.Contains(t, doc, `channel="hbo.us2"`)

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no pending files left behind")
}

func TestWriteOutput_Deterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.xml.gz")
	b := filepath.Join(dir, "b.xml.gz")
	require.NoError(t, writeOutput(a, sampleTV()))
	require.NoError(t, writeOutput(b, sampleTV()))

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(da, db))
}

func TestWriteOutput_PlainAndReplace(t *testing.T) {
	p := filepath.Join(t.TempDir(), "merged.xml")
	require.NoError(t, os.WriteFile(p, []byte("old"), 0o600))

	require.NoError(t, writeOutput(p, sampleTV()))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml"))
	assert.Contains(t, string(data), "<title>Movie</title>")
}

func TestWriteOutput_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	err := writeOutput(filepath.Join(blocker, "merged.xml.gz"), sampleTV())
	assert.Error(t, err)
}
