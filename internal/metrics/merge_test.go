// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/epgmerge/internal/epg"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveFeed(t *testing.T) {
	r := NewRecorder()

	r.ObserveFeed("ok", epg.FeedStats{
		ByTier:            map[epg.Tier]int{epg.TierExact: 3, epg.TierFuzzy: 1},
		ProgrammesKept:    40,
		DroppedUnaccepted: 5,
		DroppedWindow:     2,
		DroppedDuplicate:  1,
	})
	r.ObserveFeed("ok", epg.FeedStats{ByTier: map[epg.Tier]int{epg.TierExact: 2}, ProgrammesKept: 10})
	r.ObserveFeed("fetch_failed", epg.FeedStats{})

	assert.InDelta(t, 2, testutil.ToFloat64(r.feedsTotal.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.feedsTotal.WithLabelValues("fetch_failed")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(r.channelMatches.WithLabelValues("exact")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.channelMatches.WithLabelValues("fuzzy")), 0)
	assert.InDelta(t, 50, testutil.ToFloat64(r.programmesTotal.WithLabelValues(OutcomeKept)), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(r.programmesTotal.WithLabelValues(OutcomeUnaccepted)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(r.programmesTotal.WithLabelValues(OutcomeTimestamp)), 0)
}

func TestRecorder_Gather(t *testing.T) {
	r := NewRecorder()
	r.ObserveWarnings([]epg.Warning{
		{Kind: epg.KindMasterCollision},
		{Kind: epg.KindMasterCollision},
		{Kind: epg.KindAliasUnknown},
	})
	r.ObserveOutput(12, 345)
	r.ObserveFetch("us2", 2048)
	r.ObserveRun(time.Unix(1735689600, 0), 1500*time.Millisecond)

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	require.Contains(t, byName, "epgmerge_master_warnings_total")
	assert.Len(t, byName["epgmerge_master_warnings_total"].GetMetric(), 2)
	assert.Equal(t, 12.0, byName["epgmerge_output_channels"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 345.0, byName["epgmerge_output_programmes"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 1735689600.0, byName["epgmerge_last_run_timestamp_seconds"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 1.5, byName["epgmerge_run_duration_seconds"].GetMetric()[0].GetGauge().GetValue())

	fetch := byName["epgmerge_feed_fetch_bytes"].GetMetric()[0]
	assert.Equal(t, "feed", fetch.GetLabel()[0].GetName())
	assert.Equal(t, "us2", fetch.GetLabel()[0].GetValue())
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveOutput(1, 2)

	path := filepath.Join(t.TempDir(), "epgmerge.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# TYPE epgmerge_output_channels gauge")
	assert.Contains(t, string(data), "epgmerge_output_programmes 2")
	assert.NotContains(t, string(data), "go_goroutines")

	assert.Error(t, r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
