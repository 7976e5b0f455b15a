// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRunID = "run_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStage     = "stage"

	// Feed fields
	FieldFeed       = "feed"
	FieldFeedURL    = "feed_url"
	FieldFeedFormat = "feed_format"
	FieldAttempt    = "attempt"
	FieldBytes      = "bytes"

	// Matching fields
	FieldChannelID = "channel_id"
	FieldDisplay   = "display_name"
	FieldCanonical = "canonical"
	FieldTier      = "tier"
	FieldKey       = "key"

	// Counters
	FieldChannels   = "channels"
	FieldProgrammes = "programmes"
	FieldDropped    = "dropped"

	// Path fields
	FieldPath = "path"
)
