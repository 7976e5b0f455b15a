// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package normalize turns channel names and identifiers into comparison keys.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Feed-identifier suffixes some providers append to channel ids ("hbo.us2").
	providerSuffix = regexp.MustCompile(`\.(us2|us_locals1|us|in|uk|ca|au|de)$`)

	// Region tags whose feeds are never wanted downstream. A word boundary is any
	// character that is neither a letter nor a digit in any script, so "westeros"
	// and "westы" are not matches but "cnn-west" is.
	excludedRegion = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])(?:west|pacific)(?:[^\p{L}\p{N}]|$)`)

	separators = strings.NewReplacer(
		".", " ",
		"-", " ",
		"_", " ",
		"/", " ",
		",", " ",
		":", " ",
		"|", " ",
		"(", " ",
		")", " ",
		"[", " ",
		"]", " ",
		"&", " and ",
		"+", " plus ",
	)

	stopWords = map[string]struct{}{
		"hd":      {},
		"hdtv":    {},
		"tv":      {},
		"channel": {},
		"network": {},
		"east":    {},
		"west":    {},
	}

	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Token normalizes a string token for matching:
// - trims Unicode whitespace + invisible edge characters
// - lowercases for case-insensitive comparisons
func Token(s string) string {
	return strings.ToLower(strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || invisible(r)
	}))
}

func invisible(r rune) bool {
	return r == '\u200B' || // Zero Width Space
		r == '\u200C' || // Zero Width Non-Joiner
		r == '\u200D' || // Zero Width Joiner
		r == '\uFEFF' // Zero Width Non-Breaking Space (BOM)
}

// Fold lowercases s and removes diacritics and invisible characters
// ("Österreich" -> "osterreich").
func Fold(s string) string {
	s = Token(norm.NFC.String(s))
	s = strings.Map(func(r rune) rune {
		if invisible(r) {
			return -1
		}
		return r
	}, s)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// Excluded reports whether the name carries a region tag that rules it out.
func Excluded(raw string) bool {
	return excludedRegion.MatchString(Fold(raw))
}

// ChannelKey derives the comparison key for a channel name or id.
// ok is false when the name is excluded; such names must be dropped entirely.
// The key may be empty when nothing but stop words and punctuation remain.
func ChannelKey(raw string) (key string, ok bool) {
	s := Fold(raw)
	if excludedRegion.MatchString(s) {
		return "", false
	}

	for {
		before := s
		s = providerSuffix.ReplaceAllString(strings.TrimSpace(s), "")
		if s == before {
			break
		}
	}

	words := strings.Fields(separators.Replace(s))
	kept := words[:0]
	for _, w := range words {
		if _, stop := stopWords[w]; !stop {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " "), true
}
