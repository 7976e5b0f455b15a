// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDays           = 7
	DaysUnbounded         = -1 // disables the programme window
	DefaultFuzzyThreshold = 0.7
	DefaultOutputPath     = "merged.xml.gz"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // env keys read during Load
}

// NewLoader creates a new configuration loader. An empty configPath loads
// defaults and environment only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults
// and validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := AppConfig{}
	l.setDefaults(&cfg)

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		l.mergeFileConfig(&cfg, fileCfg)
		cfg.ConfigPath = filepath.Clean(l.configPath)
	}

	l.mergeEnvConfig(&cfg)
	cfg.Version = l.version
	l.resolvePaths(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) setDefaults(cfg *AppConfig) {
	cfg.Days = DefaultDays
	cfg.FuzzyThreshold = DefaultFuzzyThreshold
	cfg.Output.Path = DefaultOutputPath
	cfg.Fetch = FetchConfig{
		Timeout:     2 * time.Minute,
		Retries:     2,
		Backoff:     500 * time.Millisecond,
		MaxBackoff:  10 * time.Second,
		Concurrency: 4,
		RateLimit:   2,
		MaxBytes:    256 << 20,
	}
	cfg.LogLevel = "info"
	cfg.Telemetry = TelemetryConfig{
		Exporter:     "grpc",
		Endpoint:     "localhost:4317",
		SamplingRate: 1.0,
	}
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes a single strict YAML document.
func ParseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

func (l *Loader) mergeFileConfig(dst *AppConfig, src *FileConfig) {
	setString(&dst.MasterList, src.MasterList)
	setString(&dst.AliasFile, src.AliasFile)
	if len(src.Aliases) > 0 {
		dst.Aliases = src.Aliases
	}
	setPtr(&dst.Days, src.Days)
	setPtr(&dst.FuzzyThreshold, src.FuzzyThreshold)
	if len(src.Feeds) > 0 {
		dst.Feeds = src.Feeds
	}

	setString(&dst.Output.Path, src.Output.Path)
	setString(&dst.Output.Report, src.Output.Report)
	setString(&dst.Output.MetricsTextfile, src.Output.MetricsTextfile)

	setPtr(&dst.Fetch.Timeout, src.Fetch.Timeout)
	setPtr(&dst.Fetch.Retries, src.Fetch.Retries)
	setPtr(&dst.Fetch.Backoff, src.Fetch.Backoff)
	setPtr(&dst.Fetch.MaxBackoff, src.Fetch.MaxBackoff)
	setPtr(&dst.Fetch.Concurrency, src.Fetch.Concurrency)
	setPtr(&dst.Fetch.RateLimit, src.Fetch.RateLimit)
	setPtr(&dst.Fetch.MaxBytes, src.Fetch.MaxBytes)
	setString(&dst.Fetch.UserAgent, src.Fetch.UserAgent)

	setString(&dst.HistoryDB, src.HistoryDB)
	setString(&dst.LogLevel, src.LogLevel)

	setPtr(&dst.Telemetry.Enabled, src.Telemetry.Enabled)
	setString(&dst.Telemetry.Exporter, src.Telemetry.Exporter)
	setString(&dst.Telemetry.Endpoint, src.Telemetry.Endpoint)
	setPtr(&dst.Telemetry.SamplingRate, src.Telemetry.SamplingRate)
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.MasterList = l.envString("EPGMERGE_MASTER_LIST", cfg.MasterList)
	cfg.Days = l.envInt("EPGMERGE_DAYS", cfg.Days)
	cfg.FuzzyThreshold = l.envFloat("EPGMERGE_FUZZY_THRESHOLD", cfg.FuzzyThreshold)

	cfg.Output.Path = l.envString("EPGMERGE_OUTPUT", cfg.Output.Path)
	cfg.Output.Report = l.envString("EPGMERGE_REPORT", cfg.Output.Report)
	cfg.Output.MetricsTextfile = l.envString("EPGMERGE_METRICS_TEXTFILE", cfg.Output.MetricsTextfile)
	cfg.HistoryDB = l.envString("EPGMERGE_HISTORY_DB", cfg.HistoryDB)

	cfg.Fetch.Concurrency = l.envInt("EPGMERGE_FETCH_CONCURRENCY", cfg.Fetch.Concurrency)
	cfg.Fetch.Timeout = l.envDuration("EPGMERGE_FETCH_TIMEOUT", cfg.Fetch.Timeout)
	cfg.Fetch.Retries = l.envInt("EPGMERGE_FETCH_RETRIES", cfg.Fetch.Retries)

	cfg.LogLevel = l.envString("LOG_LEVEL", cfg.LogLevel)

	cfg.Telemetry.Enabled = l.envBool("EPGMERGE_OTEL_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Endpoint = l.envString("EPGMERGE_OTEL_ENDPOINT", cfg.Telemetry.Endpoint)
}

// resolvePaths makes relative input paths relative to the config file's directory.
func (l *Loader) resolvePaths(cfg *AppConfig) {
	if cfg.ConfigPath == "" {
		return
	}
	base := filepath.Dir(cfg.ConfigPath)
	paths := []*string{&cfg.MasterList, &cfg.AliasFile}
	for i := range cfg.Feeds {
		if IsLocalPath(cfg.Feeds[i].URL) {
			paths = append(paths, &cfg.Feeds[i].URL)
		}
	}
	for _, p := range paths {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func setPtr[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
