// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"sort"

	"github.com/ManuGH/epgmerge/internal/normalize"
	"github.com/rs/zerolog"
)

// AliasTable maps raw feed ids straight to master channels. It covers feeds
// whose ids and names no generic normalization can recover.
type AliasTable struct {
	byID map[string]MasterChannel
}

// NewAliasTable resolves every alias target against the master index. Targets
// that are not master channels are dropped with a warning so that only
// canonical names can reach the output.
func NewAliasTable(aliases map[string]string, index *MasterIndex, logger zerolog.Logger) (*AliasTable, []Warning) {
	t := &AliasTable{byID: make(map[string]MasterChannel, len(aliases))}
	var warnings []Warning

	ids := make([]string, 0, len(aliases))
	for id := range aliases {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		target := aliases[id]
		key := normalize.Token(id)
		if key == "" {
			continue
		}
		mc, ok := index.Canonical(target)
		if !ok {
			w := Warning{Kind: KindAliasUnknown, Value: id, Detail: "target " + target + " is not in the master list"}
			warnings = append(warnings, w)
			logger.Warn().
				Str("event", "alias.unknown_target").
				Str("channel_id", id).
				Str("canonical", target).
				Msg("alias target not in master list, ignoring")
			continue
		}
		t.byID[key] = mc
	}
	return t, warnings
}

// Lookup returns the master channel curated for rawID, if any.
func (t *AliasTable) Lookup(rawID string) (MasterChannel, bool) {
	if t == nil {
		return MasterChannel{}, false
	}
	mc, ok := t.byID[normalize.Token(rawID)]
	return mc, ok
}

// Len returns the number of usable aliases.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byID)
}
