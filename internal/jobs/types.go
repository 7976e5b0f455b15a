// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package jobs runs one complete merge: fetch every feed, walk them in order
// against the master list, write the merged guide and record the outcome.
package jobs

import (
	"context"
	"net/http"
	"time"

	"github.com/ManuGH/epgmerge/internal/config"
	"github.com/ManuGH/epgmerge/internal/epg"
	"github.com/ManuGH/epgmerge/internal/history"
	"github.com/ManuGH/epgmerge/internal/metrics"
)

// ErrFetch is returned (wrapped) for feeds whose bytes could not be obtained.
var ErrFetch = epg.ErrFetch

// Status is the outcome of one feed.
type Status string

const (
	StatusOK          Status = "ok"
	StatusFetchFailed Status = "fetch_failed"
	StatusParseFailed Status = "parse_failed"
)

// FeedReport describes what happened to one feed, in feed-list order.
type FeedReport struct {
	Name     string
	URL      string
	Format   epg.Format
	Status   Status
	Err      error
	Bytes    int64
	Attempts int
	Stats    epg.FeedStats
}

// Result summarizes a completed run.
type Result struct {
	RunID      string
	Started    time.Time
	Finished   time.Time
	Output     string
	Feeds      []FeedReport
	Warnings   []epg.Warning
	Channels   int
	Programmes int
}

// Failed returns the number of feeds that contributed nothing.
func (r *Result) Failed() int {
	n := 0
	for _, f := range r.Feeds {
		if f.Status != StatusOK {
			n++
		}
	}
	return n
}

// HistoryRecorder stores finished runs.
type HistoryRecorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Deps holds everything a run needs. Only Config is required.
type Deps struct {
	Config config.AppConfig

	// Client is used for http(s) feeds; nil builds one from Config.Fetch.
	Client *http.Client
	// Metrics receives run counters; nil uses a fresh recorder.
	Metrics *metrics.Recorder
	// History stores the run when set.
	History HistoryRecorder

	Clock func() time.Time
	NewID func() string
}
