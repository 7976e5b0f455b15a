// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

// AcceptedChannel records which master channel a raw feed id resolved to.
type AcceptedChannel struct {
	ID      string
	Display string
	Tier    Tier
	Feed    string
	Icon    *Icon
}

// AcceptedChannels maps raw feed ids to canonical names for one run. It only
// grows; an id accepted once is never re-evaluated. Not safe for concurrent use.
type AcceptedChannels struct {
	order []AcceptedChannel
	byID  map[string]int
}

// NewAcceptedChannels returns an empty map.
func NewAcceptedChannels() *AcceptedChannels {
	return &AcceptedChannels{byID: make(map[string]int)}
}

// Accept records ch unless its id is already present. It reports whether ch was added.
func (a *AcceptedChannels) Accept(ch AcceptedChannel) bool {
	if _, ok := a.byID[ch.ID]; ok {
		return false
	}
	a.byID[ch.ID] = len(a.order)
	a.order = append(a.order, ch)
	return true
}

// Lookup returns the acceptance recorded for a raw id.
func (a *AcceptedChannels) Lookup(id string) (AcceptedChannel, bool) {
	i, ok := a.byID[id]
	if !ok {
		return AcceptedChannel{}, false
	}
	return a.order[i], true
}

// Has reports whether the raw id has been accepted.
func (a *AcceptedChannels) Has(id string) bool {
	_, ok := a.byID[id]
	return ok
}

// Len returns the number of accepted raw ids.
func (a *AcceptedChannels) Len() int { return len(a.order) }

// All returns the acceptances in the order they were made.
func (a *AcceptedChannels) All() []AcceptedChannel {
	out := make([]AcceptedChannel, len(a.order))
	copy(out, a.order)
	return out
}
