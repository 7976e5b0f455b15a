// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"strings"

	"github.com/ManuGH/epgmerge/internal/normalize"
	"github.com/rs/zerolog"
)

// MasterChannel is one curated channel. Key is never empty.
type MasterChannel struct {
	Display string
	Key     string
}

// MasterIndex holds the curated channel list in load order.
type MasterIndex struct {
	entries   []MasterChannel
	byKey     map[string]int
	byDisplay map[string]int
}

// BuildMasterIndex normalizes every master line. Blank lines and lines starting
// with '#' are skipped. Entries that are excluded or normalize to nothing are
// dropped, and on key collisions the first entry wins; both cases produce a
// warning rather than an error.
func BuildMasterIndex(lines []string, logger zerolog.Logger) (*MasterIndex, []Warning) {
	idx := &MasterIndex{
		entries:   make([]MasterChannel, 0, len(lines)),
		byKey:     make(map[string]int, len(lines)),
		byDisplay: make(map[string]int, len(lines)),
	}
	var warnings []Warning

	for i, line := range lines {
		display := strings.TrimSpace(line)
		if display == "" || strings.HasPrefix(display, "#") {
			continue
		}

		key, ok := normalize.ChannelKey(display)
		if !ok || key == "" {
			detail := "normalizes to an excluded name"
			if ok {
				detail = "normalizes to an empty key"
			}
			w := Warning{Kind: KindMasterExcluded, Line: i + 1, Value: display, Detail: detail}
			warnings = append(warnings, w)
			logger.Warn().
				Str("event", "master.excluded").
				Int("line", w.Line).
				Str("display_name", display).
				Msg(detail)
			continue
		}

		if prev, dup := idx.byKey[key]; dup {
			w := Warning{
				Kind:   KindMasterCollision,
				Line:   i + 1,
				Value:  display,
				Detail: "same key as " + idx.entries[prev].Display,
			}
			warnings = append(warnings, w)
			logger.Warn().
				Str("event", "master.collision").
				Int("line", w.Line).
				Str("display_name", display).
				Str("key", key).
				Str("kept", idx.entries[prev].Display).
				Msg("master entries normalize identically, keeping the first")
			continue
		}

		idx.byKey[key] = len(idx.entries)
		if _, seen := idx.byDisplay[normalize.Token(display)]; !seen {
			idx.byDisplay[normalize.Token(display)] = len(idx.entries)
		}
		idx.entries = append(idx.entries, MasterChannel{Display: display, Key: key})
	}

	logger.Debug().
		Str("event", "master.loaded").
		Int("channels", len(idx.entries)).
		Int("warnings", len(warnings)).
		Msg("master list indexed")
	return idx, warnings
}

// Len returns the number of usable master entries.
func (m *MasterIndex) Len() int { return len(m.entries) }

// Entries returns the master entries in load order.
func (m *MasterIndex) Entries() []MasterChannel {
	out := make([]MasterChannel, len(m.entries))
	copy(out, m.entries)
	return out
}

// Lookup finds the entry with exactly this normalized key.
func (m *MasterIndex) Lookup(key string) (MasterChannel, bool) {
	i, ok := m.byKey[key]
	if !ok {
		return MasterChannel{}, false
	}
	return m.entries[i], true
}

// Canonical finds an entry by its display name (case-insensitive) or, failing
// that, by the name's normalized key.
func (m *MasterIndex) Canonical(name string) (MasterChannel, bool) {
	if i, ok := m.byDisplay[normalize.Token(name)]; ok {
		return m.entries[i], true
	}
	key, ok := normalize.ChannelKey(name)
	if !ok || key == "" {
		return MasterChannel{}, false
	}
	return m.Lookup(key)
}
