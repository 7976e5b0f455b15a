// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := ContextWithRunID(context.Background(), "run-1")
	ctx = ContextWithFeed(ctx, "us2")

	assert.Equal(t, "run-1", RunIDFromContext(ctx))
	assert.Equal(t, "us2", FeedFromContext(ctx))
	assert.Empty(t, RunIDFromContext(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Empty(t, FeedFromContext(nil))
}

func TestWithContext_AddsCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := ContextWithFeed(ContextWithRunID(context.Background(), "run-42"), "locals")
	l := WithContext(ctx, base)
	l.Info().Msg("x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-42", entry[FieldRunID])
	assert.Equal(t, "locals", entry[FieldFeed])
}

func TestWithContext_NoFieldsReturnsSameLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	l := WithContext(context.Background(), base)
	l.Info().Msg("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, hasRun := entry[FieldRunID]
	assert.False(t, hasRun)
}
