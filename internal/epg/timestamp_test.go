// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStart(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"20250101200000", time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)},
		{"20250101200000 +0000", time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)},
		{"20250101200000 +0100", time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)},
		{"20250101200000 -0530", time.Date(2025, 1, 2, 1, 30, 0, 0, time.UTC)},
		{"  20250101200000  ", time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)},
		{"20250101200000 CET", time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)},
		{"20250101200000+0100", time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStart(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseStart_Invalid(t *testing.T) {
	for _, in := range []string{"", "2025", "2025-01-01T20:00", "20251301200000", "2025010120000x"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseStart(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTimestamp)
		})
	}
}
