// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics records merge-run outcomes as Prometheus collectors and
// writes them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/ManuGH/epgmerge/internal/epg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Programme outcome label values.
const (
	OutcomeKept       = "kept"
	OutcomeUnaccepted = "unaccepted"
	OutcomeTimestamp  = "bad_timestamp"
	OutcomeWindow     = "outside_window"
	OutcomeDuplicate  = "duplicate"
)

// Recorder owns one registry per run so that the textfile only contains
// epgmerge series.
type Recorder struct {
	reg *prometheus.Registry

	feedsTotal       *prometheus.CounterVec
	channelMatches   *prometheus.CounterVec
	programmesTotal  *prometheus.CounterVec
	masterWarnings   *prometheus.CounterVec
	fetchBytes       *prometheus.GaugeVec
	outputChannels   prometheus.Gauge
	outputProgrammes prometheus.Gauge
	lastRun          prometheus.Gauge
	runDuration      prometheus.Gauge
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		feedsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "epgmerge_feeds_total",
			Help: "Feeds processed by outcome",
		}, []string{"status"}), // status=ok|fetch_failed|parse_failed
		channelMatches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "epgmerge_channel_matches_total",
			Help: "Feed channels accepted by matching tier",
		}, []string{"tier"}), // tier=alias|exact|substring|fuzzy
		programmesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "epgmerge_programmes_total",
			Help: "Feed programmes by outcome",
		}, []string{"outcome"}),
		masterWarnings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "epgmerge_master_warnings_total",
			Help: "Master list and alias entries that were ignored",
		}, []string{"kind"}),
		fetchBytes: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "epgmerge_feed_fetch_bytes",
			Help: "Bytes downloaded per feed in the last run",
		}, []string{"feed"}),
		outputChannels: f.NewGauge(prometheus.GaugeOpts{
			Name: "epgmerge_output_channels",
			Help: "Channels written to the merged guide",
		}),
		outputProgrammes: f.NewGauge(prometheus.GaugeOpts{
			Name: "epgmerge_output_programmes",
			Help: "Programmes written to the merged guide",
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "epgmerge_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		runDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "epgmerge_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// ObserveFeed records one feed outcome and, for walked feeds, its counters.
func (r *Recorder) ObserveFeed(status string, stats epg.FeedStats) {
	r.feedsTotal.WithLabelValues(status).Inc()
	for tier, n := range stats.ByTier {
		r.channelMatches.WithLabelValues(tier.String()).Add(float64(n))
	}
	r.programmesTotal.WithLabelValues(OutcomeKept).Add(float64(stats.ProgrammesKept))
	r.programmesTotal.WithLabelValues(OutcomeUnaccepted).Add(float64(stats.DroppedUnaccepted))
	r.programmesTotal.WithLabelValues(OutcomeTimestamp).Add(float64(stats.DroppedTimestamp))
	r.programmesTotal.WithLabelValues(OutcomeWindow).Add(float64(stats.DroppedWindow))
	r.programmesTotal.WithLabelValues(OutcomeDuplicate).Add(float64(stats.DroppedDuplicate))
}

func (r *Recorder) ObserveFetch(feed string, bytes int64) {
	r.fetchBytes.WithLabelValues(feed).Set(float64(bytes))
}

func (r *Recorder) ObserveWarnings(warnings []epg.Warning) {
	for _, w := range warnings {
		r.masterWarnings.WithLabelValues(string(w.Kind)).Inc()
	}
}

func (r *Recorder) ObserveOutput(channels, programmes int) {
	r.outputChannels.Set(float64(channels))
	r.outputProgrammes.Set(float64(programmes))
}

func (r *Recorder) ObserveRun(finished time.Time, took time.Duration) {
	r.lastRun.Set(float64(finished.Unix()))
	r.runDuration.Set(took.Seconds())
}

// WriteTextfile writes every collected series to path. The file is replaced
// atomically so a concurrent scrape never sees a partial file.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
