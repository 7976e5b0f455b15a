// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ManuGH/epgmerge/internal/epg"
	"github.com/ManuGH/epgmerge/internal/validate"
)

var feedSchemes = []string{"http", "https", "file"}

// IsLocalPath reports whether a feed location is a plain filesystem path
// rather than a URL.
func IsLocalPath(loc string) bool {
	u, err := url.Parse(loc)
	return err == nil && u.Scheme == "" && u.Host == ""
}

// Validate checks a resolved configuration. Failures wrap ErrInvalid.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.NotEmpty("master_list", cfg.MasterList)
	v.AtLeast("days", cfg.Days, DaysUnbounded)
	v.Fraction("fuzzy_threshold", cfg.FuzzyThreshold)

	if len(cfg.Feeds) == 0 {
		v.AddError("feeds", "at least one feed is required", nil)
	}
	names := make([]string, 0, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		field := fmt.Sprintf("feeds[%d]", i)
		v.NotEmpty(field+".name", f.Name)
		if IsLocalPath(f.URL) {
			v.NotEmpty(field+".url", f.URL)
		} else {
			v.FeedURL(field+".url", f.URL, feedSchemes)
		}
		if _, err := epg.ParseFormat(f.Format); err != nil {
			v.AddError(field+".format", err.Error(), f.Format)
		}
		names = append(names, strings.TrimSpace(f.Name))
	}
	v.Unique("feeds.name", names)

	v.NotEmpty("output.path", cfg.Output.Path)

	v.PositiveDuration("fetch.timeout", cfg.Fetch.Timeout)
	v.Range("fetch.retries", cfg.Fetch.Retries, 0, 10)
	v.PositiveDuration("fetch.backoff", cfg.Fetch.Backoff)
	if cfg.Fetch.MaxBackoff < cfg.Fetch.Backoff {
		v.AddError("fetch.max_backoff", "must not be smaller than fetch.backoff", cfg.Fetch.MaxBackoff)
	}
	v.Range("fetch.concurrency", cfg.Fetch.Concurrency, 1, 64)
	if cfg.Fetch.RateLimit < 0 {
		v.AddError("fetch.rate_limit", "value cannot be negative", cfg.Fetch.RateLimit)
	}
	if cfg.Fetch.MaxBytes <= 0 {
		v.AddError("fetch.max_bytes", "value must be positive", cfg.Fetch.MaxBytes)
	}

	v.OneOf("log_level", strings.ToLower(cfg.LogLevel), []string{"trace", "debug", "info", "warn", "error"})

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			v.AddError("telemetry.sampling_rate", "value must be between 0 and 1", cfg.Telemetry.SamplingRate)
		}
	}

	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
