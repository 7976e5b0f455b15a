// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
)

// Walker streams feeds one element at a time against the run-global state.
// Feeds must be walked one after another; nothing here is synchronized.
type Walker struct {
	Matcher  *Matcher
	Accepted *AcceptedChannels
	Dedup    *DedupSet
	// Window bounds how far ahead of Now a programme may start. Zero keeps only
	// programmes starting at or before Now; Unbounded disables the filter.
	Window time.Duration
	// Now is the reference time for Window, fixed for the whole run.
	Now    time.Time
	Logger zerolog.Logger
}

// Unbounded is the Window value that keeps programmes regardless of start.
const Unbounded time.Duration = -1

// FeedStats counts what happened to a feed's elements.
type FeedStats struct {
	ChannelsSeen      int
	ChannelsAccepted  int
	ChannelsKnown     int // raw id already accepted by an earlier feed or element
	ChannelsExcluded  int
	ChannelsUnmatched int
	ByTier            map[Tier]int

	ProgrammesSeen    int
	ProgrammesKept    int
	DroppedUnaccepted int
	DroppedTimestamp  int
	DroppedWindow     int
	DroppedDuplicate  int
}

// Dropped returns the number of programmes that were not kept.
func (s FeedStats) Dropped() int {
	return s.DroppedUnaccepted + s.DroppedTimestamp + s.DroppedWindow + s.DroppedDuplicate
}

// FeedResult is what one feed contributed to the run.
type FeedResult struct {
	Feed       string
	Accepted   []AcceptedChannel
	Programmes []Programme
	Stats      FeedStats
}

// feedWalk stages one feed's acceptances and dedup keys so that a feed that
// fails halfway leaves the run-global state untouched.
type feedWalk struct {
	w        *Walker
	feed     string
	accepted *AcceptedChannels
	dedup    *DedupSet
	cutoff   time.Time
	windowed bool
	result   FeedResult
	logger   zerolog.Logger
}

func (w *Walker) begin(feed string) *feedWalk {
	fw := &feedWalk{
		w:        w,
		feed:     feed,
		accepted: NewAcceptedChannels(),
		dedup:    NewDedupSet(),
		windowed: w.Window != Unbounded,
		result: FeedResult{
			Feed:  feed,
			Stats: FeedStats{ByTier: make(map[Tier]int, len(Tiers))},
		},
		logger: w.Logger.With().Str("feed", feed).Logger(),
	}
	if fw.windowed {
		fw.cutoff = w.Now.Add(w.Window)
	}
	return fw
}

// commit folds the staged state into the run-global objects.
func (fw *feedWalk) commit() FeedResult {
	for _, ch := range fw.accepted.order {
		fw.w.Accepted.Accept(ch)
	}
	for k := range fw.dedup.keys {
		fw.w.Dedup.Add(k)
	}
	fw.result.Accepted = fw.accepted.All()
	fw.logger.Debug().
		Str("event", "feed.walk.done").
		Int("channels", fw.result.Stats.ChannelsAccepted).
		Int("programmes", fw.result.Stats.ProgrammesKept).
		Int("dropped", fw.result.Stats.Dropped()).
		Msg("feed walked")
	return fw.result
}

func (fw *feedWalk) fail(err error) (FeedResult, error) {
	fw.logger.Warn().
		Err(err).
		Str("event", "feed.walk.failed").
		Msg("feed discarded")
	return FeedResult{Feed: fw.feed}, &FeedError{Kind: KindParse, Feed: fw.feed, Err: err}
}

func (fw *feedWalk) isAccepted(id string) bool {
	return fw.w.Accepted.Has(id) || fw.accepted.Has(id)
}

// lookup finds an accepted channel in the run-global or the staged table.
func (fw *feedWalk) lookup(id string) (AcceptedChannel, bool) {
	if ac, ok := fw.w.Accepted.Lookup(id); ok {
		return ac, true
	}
	return fw.accepted.Lookup(id)
}

func (fw *feedWalk) channel(ch Channel) {
	st := &fw.result.Stats
	st.ChannelsSeen++

	id := strings.TrimSpace(ch.ID)
	if id == "" {
		st.ChannelsUnmatched++
		return
	}
	if fw.isAccepted(id) {
		st.ChannelsKnown++
		return
	}

	m := fw.w.Matcher.Resolve(id, ch.Display())
	switch {
	case m.Excluded:
		st.ChannelsExcluded++
		return
	case !m.Matched():
		st.ChannelsUnmatched++
		return
	}

	fw.accepted.Accept(AcceptedChannel{ID: id, Display: m.Display, Tier: m.Tier, Feed: fw.feed, Icon: ch.Icon})
	st.ChannelsAccepted++
	st.ByTier[m.Tier]++
	fw.logger.Trace().
		Str("event", "channel.accepted").
		Str("channel_id", id).
		Str("display_name", ch.Display()).
		Str("canonical", m.Display).
		Str("tier", m.Tier.String()).
		Msg("channel matched")
}

func (fw *feedWalk) programme(p Programme) {
	st := &fw.result.Stats
	st.ProgrammesSeen++

	p.Channel = strings.TrimSpace(p.Channel)
	ac, ok := fw.lookup(p.Channel)
	if !ok {
		st.DroppedUnaccepted++
		return
	}
	start, err := ParseStart(p.Start)
	if err != nil {
		st.DroppedTimestamp++
		fw.logger.Trace().Err(err).Str("event", "programme.bad_start").Str("channel_id", p.Channel).Msg("programme dropped")
		return
	}
	if fw.windowed && start.After(fw.cutoff) {
		st.DroppedWindow++
		return
	}
	k := KeyOf(ac.Display, start, p)
	if fw.w.Dedup.Seen(k) || !fw.dedup.Add(k) {
		st.DroppedDuplicate++
		return
	}
	fw.result.Programmes = append(fw.result.Programmes, p)
	st.ProgrammesKept++
}

func newDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	// No entity expansion beyond the XML predefined ones.
	dec.Entity = make(map[string]string)
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}

// WalkXML makes one forward pass over an XMLTV document. Only the direct
// children of the <tv> root are examined, and each channel or programme is
// decoded, processed and released before the next token is read.
//
// A document that is not well-formed contributes nothing: the returned error
// is a *FeedError of KindParse and the run-global state is unchanged.
func (w *Walker) WalkXML(ctx context.Context, feed string, r io.Reader) (FeedResult, error) {
	fw := w.begin(feed)
	dec := newDecoder(r)

	rootSeen := false
	for {
		if err := ctx.Err(); err != nil {
			return FeedResult{Feed: feed}, err
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fw.fail(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !rootSeen {
				if t.Name.Local != "tv" {
					return fw.fail(fmt.Errorf("unexpected root element <%s>", t.Name.Local))
				}
				rootSeen = true
				continue
			}
			switch t.Name.Local {
			case "channel":
				var ch Channel
				if err := dec.DecodeElement(&ch, &t); err != nil {
					return fw.fail(err)
				}
				fw.channel(ch)
			case "programme":
				var p Programme
				if err := dec.DecodeElement(&p, &t); err != nil {
					return fw.fail(err)
				}
				fw.programme(p)
			default:
				if err := dec.Skip(); err != nil {
					return fw.fail(err)
				}
			}
		case xml.EndElement:
			// Children are consumed whole, so this closes the root.
			return fw.commit(), nil
		}
	}

	if !rootSeen {
		return fw.fail(errors.New("no root element"))
	}
	return fw.fail(io.ErrUnexpectedEOF)
}
