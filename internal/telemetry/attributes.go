// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by all epgmerge spans.
const (
	RunIDKey    = "epgmerge.run_id"
	RunFeedsKey = "epgmerge.feeds"

	FeedNameKey    = "feed.name"
	FeedURLKey     = "feed.url"
	FeedFormatKey  = "feed.format"
	FeedAttemptKey = "feed.attempt"
	FeedBytesKey   = "feed.bytes"
	FeedStatusKey  = "feed.status"

	ChannelsKey   = "epg.channels"
	ProgrammesKey = "epg.programmes"
	DroppedKey    = "epg.dropped"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// RunAttributes describes a merge run.
func RunAttributes(runID string, feeds int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(RunIDKey, runID),
		attribute.Int(RunFeedsKey, feeds),
	}
}

// FeedAttributes identifies a feed. Empty values are omitted.
func FeedAttributes(name, url, format string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if name != "" {
		attrs = append(attrs, attribute.String(FeedNameKey, name))
	}
	if url != "" {
		attrs = append(attrs, attribute.String(FeedURLKey, url))
	}
	if format != "" {
		attrs = append(attrs, attribute.String(FeedFormatKey, format))
	}
	return attrs
}

// CountAttributes records what a walk or the assembled output contained.
func CountAttributes(channels, programmes, dropped int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(ChannelsKey, channels),
		attribute.Int(ProgrammesKey, programmes),
		attribute.Int(DroppedKey, dropped),
	}
}

// ErrorAttributes marks a span as failed with a classification.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
