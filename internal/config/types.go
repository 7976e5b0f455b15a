// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/epgmerge/internal/epg"
)

// AppConfig is the fully resolved configuration of one merge run.
type AppConfig struct {
	Version    string
	ConfigPath string

	MasterList     string
	AliasFile      string
	Aliases        map[string]string
	Days           int
	FuzzyThreshold float64
	Feeds          []FeedConfig

	Output    OutputConfig
	Fetch     FetchConfig
	HistoryDB string
	LogLevel  string
	Telemetry TelemetryConfig
}

// Window is the programme look-ahead window. DaysUnbounded maps to
// epg.Unbounded; zero days keeps only programmes that have already started.
func (c AppConfig) Window() time.Duration {
	if c.Days == DaysUnbounded {
		return epg.Unbounded
	}
	return time.Duration(c.Days) * 24 * time.Hour
}

// FeedConfig is one upstream feed, processed in list order.
type FeedConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Format string `yaml:"format,omitempty"`
}

type OutputConfig struct {
	Path            string
	Report          string
	MetricsTextfile string
}

type FetchConfig struct {
	Timeout     time.Duration
	Retries     int
	Backoff     time.Duration
	MaxBackoff  time.Duration
	Concurrency int
	RateLimit   float64 // requests per second, 0 = unlimited
	MaxBytes    int64
	UserAgent   string
}

type TelemetryConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// FileConfig mirrors the YAML file. Pointers distinguish "unset" from zero.
type FileConfig struct {
	MasterList     string            `yaml:"master_list,omitempty"`
	AliasFile      string            `yaml:"alias_file,omitempty"`
	Aliases        map[string]string `yaml:"aliases,omitempty"`
	Days           *int              `yaml:"days,omitempty"`
	FuzzyThreshold *float64          `yaml:"fuzzy_threshold,omitempty"`
	Feeds          []FeedConfig      `yaml:"feeds,omitempty"`

	Output    OutputFileConfig    `yaml:"output,omitempty"`
	Fetch     FetchFileConfig     `yaml:"fetch,omitempty"`
	HistoryDB string              `yaml:"history_db,omitempty"`
	LogLevel  string              `yaml:"log_level,omitempty"`
	Telemetry TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

type OutputFileConfig struct {
	Path            string `yaml:"path,omitempty"`
	Report          string `yaml:"report,omitempty"`
	MetricsTextfile string `yaml:"metrics_textfile,omitempty"`
}

type FetchFileConfig struct {
	Timeout     *time.Duration `yaml:"timeout,omitempty"`
	Retries     *int           `yaml:"retries,omitempty"`
	Backoff     *time.Duration `yaml:"backoff,omitempty"`
	MaxBackoff  *time.Duration `yaml:"max_backoff,omitempty"`
	Concurrency *int           `yaml:"concurrency,omitempty"`
	RateLimit   *float64       `yaml:"rate_limit,omitempty"`
	MaxBytes    *int64         `yaml:"max_bytes,omitempty"`
	UserAgent   string         `yaml:"user_agent,omitempty"`
}

type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"sampling_rate,omitempty"`
}
