// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"strings"

	"github.com/ManuGH/epgmerge/internal/normalize"
)

// DefaultFuzzyThreshold is the similarity a fuzzy match must reach.
const DefaultFuzzyThreshold = 0.7

// Tier names the strategy that produced a match. Lower tiers take precedence.
type Tier int

const (
	TierNone Tier = iota
	TierAlias
	TierExact
	TierSubstring
	TierFuzzy
)

// Tiers lists every matching tier in precedence order.
var Tiers = []Tier{TierAlias, TierExact, TierSubstring, TierFuzzy}

func (t Tier) String() string {
	switch t {
	case TierAlias:
		return "alias"
	case TierExact:
		return "exact"
	case TierSubstring:
		return "substring"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Match is the outcome of resolving one feed channel.
type Match struct {
	Display  string
	Tier     Tier
	Excluded bool
}

// Matched reports whether a master channel was found.
func (m Match) Matched() bool { return m.Tier != TierNone }

// Matcher resolves feed channels to master channels.
type Matcher struct {
	index     *MasterIndex
	aliases   *AliasTable
	threshold float64
}

// NewMatcher returns a matcher over index. aliases may be nil. A threshold
// outside (0, 1] selects DefaultFuzzyThreshold.
func NewMatcher(index *MasterIndex, aliases *AliasTable, threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultFuzzyThreshold
	}
	return &Matcher{index: index, aliases: aliases, threshold: threshold}
}

// Threshold returns the effective fuzzy threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Resolve finds the master channel for a feed channel. The display name is the
// candidate; the raw id stands in when the display name is blank. Excluded
// candidates never match, not even through an alias.
func (m *Matcher) Resolve(rawID, displayName string) Match {
	candidate := strings.TrimSpace(displayName)
	if candidate == "" {
		candidate = strings.TrimSpace(rawID)
	}
	key, ok := normalize.ChannelKey(candidate)
	if !ok {
		return Match{Excluded: true}
	}

	if mc, ok := m.aliases.Lookup(rawID); ok {
		return Match{Display: mc.Display, Tier: TierAlias}
	}

	if key != "" {
		if mc, ok := m.index.Lookup(key); ok {
			return Match{Display: mc.Display, Tier: TierExact}
		}
		for _, mc := range m.index.entries {
			if strings.Contains(mc.Key, key) || strings.Contains(key, mc.Key) {
				return Match{Display: mc.Display, Tier: TierSubstring}
			}
		}
	}

	idKey, idOK := normalize.ChannelKey(rawID)
	if !idOK {
		idKey = ""
	}
	if mc, ok := m.fuzzy(key, idKey); ok {
		return Match{Display: mc.Display, Tier: TierFuzzy}
	}
	return Match{}
}

// fuzzy returns the first master entry, in load order, that either key
// resembles closely enough. Empty keys are skipped.
func (m *Matcher) fuzzy(key, idKey string) (MasterChannel, bool) {
	if key == "" && idKey == "" {
		return MasterChannel{}, false
	}
	keyLen := len([]rune(key))
	idLen := len([]rune(idKey))
	for _, mc := range m.index.entries {
		mcLen := len([]rune(mc.Key))
		if key != "" && similarityBound(keyLen, mcLen) >= m.threshold &&
			Similarity(key, mc.Key) >= m.threshold {
			return mc, true
		}
		if idKey != "" && similarityBound(idLen, mcLen) >= m.threshold &&
			Similarity(idKey, mc.Key) >= m.threshold {
			return mc, true
		}
	}
	return MasterChannel{}, false
}
