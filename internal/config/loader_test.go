// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/epgmerge/internal/epg"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "epgmerge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
master_list: channels.txt
feeds:
  - name: us2
    url: https://example.org/epg_US2.xml.gz
`

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := NewLoader(path, "1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "channels.txt"), cfg.MasterList)
	assert.Equal(t, DefaultDays, cfg.Days)
	assert.Equal(t, 7*24*time.Hour, cfg.Window())
	assert.InDelta(t, DefaultFuzzyThreshold, cfg.FuzzyThreshold, 1e-9)
	assert.Equal(t, DefaultOutputPath, cfg.Output.Path)
	assert.Equal(t, 2*time.Minute, cfg.Fetch.Timeout)
	assert.Equal(t, 4, cfg.Fetch.Concurrency)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Telemetry.Enabled)

	want := []FeedConfig{{Name: "us2", URL: "https://example.org/epg_US2.xml.gz"}}
	if diff := cmp.Diff(want, cfg.Feeds); diff != "" {
		t.Errorf("feeds mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
master_list: /etc/epgmerge/channels.txt
alias_file: aliases.yaml
aliases:
  hbo.us2: HBO
days: 0
fuzzy_threshold: 0.85
feeds:
  - name: us2
    url: https://example.org/epg_US2.xml.gz
  - name: local
    url: file:///srv/epg/local.txt
    format: list
output:
  path: /var/lib/epgmerge/merged.xml.gz
  report: /var/lib/epgmerge/index.html
fetch:
  timeout: 30s
  retries: 0
  backoff: 1s
  max_backoff: 4s
  rate_limit: 0
history_db: /var/lib/epgmerge/history.db
telemetry:
  enabled: true
  exporter: http
  endpoint: collector:4318
  sampling_rate: 0.25
`)

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "/etc/epgmerge/channels.txt", cfg.MasterList)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "aliases.yaml"), cfg.AliasFile)
	assert.Equal(t, map[string]string{"hbo.us2": "HBO"}, cfg.Aliases)
	assert.Equal(t, 0, cfg.Days, "an explicit zero is kept, not replaced by the default")
	assert.Zero(t, cfg.Window(), "zero days still windows at now")
	assert.InDelta(t, 0.85, cfg.FuzzyThreshold, 1e-9)
	require.Len(t, cfg.Feeds, 2)
	assert.Equal(t, "list", cfg.Feeds[1].Format)
	assert.Equal(t, "/var/lib/epgmerge/index.html", cfg.Output.Report)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 0, cfg.Fetch.Retries)
	assert.Equal(t, 4*time.Second, cfg.Fetch.MaxBackoff)
	assert.Zero(t, cfg.Fetch.RateLimit)
	assert.Equal(t, "/var/lib/epgmerge/history.db", cfg.HistoryDB)
	assert.Equal(t, TelemetryConfig{Enabled: true, Exporter: "http", Endpoint: "collector:4318", SamplingRate: 0.25}, cfg.Telemetry)
}

func TestLoad_UnboundedWindow(t *testing.T) {
	path := writeConfig(t, minimalConfig+"days: -1\n")

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, DaysUnbounded, cfg.Days)
	assert.Equal(t, epg.Unbounded, cfg.Window())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, minimalConfig+"days: 3\n")

	t.Setenv("EPGMERGE_DAYS", "10")
	t.Setenv("EPGMERGE_FUZZY_THRESHOLD", "0.9")
	t.Setenv("EPGMERGE_OUTPUT", "/tmp/out.xml.gz")
	t.Setenv("EPGMERGE_FETCH_CONCURRENCY", "8")
	t.Setenv("EPGMERGE_FETCH_TIMEOUT", "not-a-duration")
	t.Setenv("LOG_LEVEL", "debug")

	l := NewLoader(path, "")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Days)
	assert.InDelta(t, 0.9, cfg.FuzzyThreshold, 1e-9)
	assert.Equal(t, "/tmp/out.xml.gz", cfg.Output.Path)
	assert.Equal(t, 8, cfg.Fetch.Concurrency)
	assert.Equal(t, 2*time.Minute, cfg.Fetch.Timeout, "unparsable env keeps the previous value")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Contains(t, l.ConsumedEnvKeys, "EPGMERGE_DAYS")
	assert.Contains(t, l.ConsumedEnvKeys, "LOG_LEVEL")
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("EPGMERGE_MASTER_LIST", "channels.txt")

	_, err := NewLoader("", "").Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid, "no feeds configured")
}

func TestLoad_StrictParsing(t *testing.T) {
	t.Run("unknown field", func(t *testing.T) {
		path := writeConfig(t, minimalConfig+"dayz: 3\n")
		_, err := NewLoader(path, "").Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownConfigField), "got %v", err)
		assert.Contains(t, err.Error(), "dayz")
	})

	t.Run("unknown nested field", func(t *testing.T) {
		path := writeConfig(t, minimalConfig+"fetch:\n  retry: 3\n")
		_, err := NewLoader(path, "").Load()
		assert.ErrorIs(t, err, ErrUnknownConfigField)
	})

	t.Run("multiple documents", func(t *testing.T) {
		path := writeConfig(t, minimalConfig+"---\ndays: 1\n")
		_, err := NewLoader(path, "").Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multiple documents")
	})

	t.Run("wrong extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
		_, err := NewLoader(path, "").Load()
		assert.ErrorContains(t, err, "only YAML supported")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"), "").Load()
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestParseFile_Empty(t *testing.T) {
	fc, err := ParseFile(nil)
	require.NoError(t, err)
	assert.Equal(t, &FileConfig{}, fc)
}
