// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import "time"

// DedupKey identifies one programme airing within a run. Channel is the
// canonical name, not the feed's raw id, so airings reached through different
// raw ids of the same channel collide. Start is the instant in UTC.
type DedupKey struct {
	Channel string
	Start   string
	Title   string
}

// KeyOf builds the dedup key of a programme on the canonical channel, starting
// at the already parsed start.
func KeyOf(canonical string, start time.Time, p Programme) DedupKey {
	return DedupKey{
		Channel: canonical,
		Start:   start.UTC().Format(startOffsetLayout),
		Title:   p.Title(),
	}
}

// DedupSet remembers every programme kept during a run; the first occurrence
// of a key wins. Not safe for concurrent use.
type DedupSet struct {
	keys map[DedupKey]struct{}
}

// NewDedupSet returns an empty set.
func NewDedupSet() *DedupSet {
	return &DedupSet{keys: make(map[DedupKey]struct{})}
}

// Seen reports whether k is already in the set.
func (s *DedupSet) Seen(k DedupKey) bool {
	_, ok := s.keys[k]
	return ok
}

// Add inserts k and reports whether it was new.
func (s *DedupSet) Add(k DedupKey) bool {
	if _, ok := s.keys[k]; ok {
		return false
	}
	s.keys[k] = struct{}{}
	return true
}

// Len returns the number of distinct keys.
func (s *DedupSet) Len() int { return len(s.keys) }
