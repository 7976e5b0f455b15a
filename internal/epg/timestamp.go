// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"fmt"
	"strings"
	"time"
)

const (
	startLayout       = "20060102150405"
	startOffsetLayout = "20060102150405 -0700"
)

// ParseStart parses an XMLTV start attribute: a 14-digit YYYYMMDDHHMMSS prefix
// with an optional " ±HHMM" offset. A missing or malformed offset means UTC.
func ParseStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(startLayout) {
		return time.Time{}, fmt.Errorf("%w: %q is shorter than %d characters", ErrTimestamp, s, len(startLayout))
	}
	prefix := s[:len(startLayout)]
	if off := strings.TrimSpace(s[len(startLayout):]); isOffset(off) {
		if t, err := time.Parse(startOffsetLayout, prefix+" "+off); err == nil {
			return t, nil
		}
	}
	t, err := time.ParseInLocation(startLayout, prefix, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrTimestamp, s, err)
	}
	return t, nil
}

func isOffset(s string) bool {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
