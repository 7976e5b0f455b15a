// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestRunAttributes(t *testing.T) {
	m := attrMap(RunAttributes("run-1", 3))
	assert.Equal(t, "run-1", m[RunIDKey].AsString())
	assert.Equal(t, int64(3), m[RunFeedsKey].AsInt64())
}

func TestFeedAttributes(t *testing.T) {
	tests := []struct {
		name              string
		feed, url, format string
		wantLen           int
	}{
		{"all fields", "us2", "https://example.org/epg.xml", "xmltv", 3},
		{"only name", "us2", "", "", 1},
		{"none", "", "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := FeedAttributes(tt.feed, tt.url, tt.format)
			assert.Len(t, attrs, tt.wantLen)
		})
	}
}

func TestCountAndErrorAttributes(t *testing.T) {
	m := attrMap(CountAttributes(10, 200, 7))
	assert.Equal(t, int64(10), m[ChannelsKey].AsInt64())
	assert.Equal(t, int64(200), m[ProgrammesKey].AsInt64())
	assert.Equal(t, int64(7), m[DroppedKey].AsInt64())

	m = attrMap(ErrorAttributes("parse"))
	assert.True(t, m[ErrorKey].AsBool())
	assert.Equal(t, "parse", m[ErrorTypeKey].AsString())
}
