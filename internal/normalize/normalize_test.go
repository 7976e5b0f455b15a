// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToken(t *testing.T) {
	assert.Equal(t, "hbo", Token("  HBO\u200b"))
	assert.Equal(t, "a b", Token("\ufeffA B\t"))
	assert.Equal(t, "", Token(" \n "))
}

func TestChannelKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"stop word hd", "ESPN HD", "espn"},
		{"east is a stop word", "HBO East", "hbo"},
		{"provider suffix", "hbo.us2", "hbo"},
		{"locals suffix", "wabc.us_locals1", "wabc"},
		{"repeated suffix", "abc.us.us2", "abc"},
		{"separators", "A&E (US)", "a and e us"},
		{"plus", "Canal+", "canal plus"},
		{"dots and dashes", "Fox-News.Channel", "fox news"},
		{"whitespace collapse", "  Discovery    Science  ", "discovery science"},
		{"stop word only inside word", "Networker TV", "networker"},
		{"diacritics", "Österreich Eins", "osterreich eins"},
		{"hdtv", "NBC HDTV", "nbc"},
		{"empty", "", ""},
		{"only stop words", "HD TV Channel", ""},
		{"westeros is not west", "Westeros Network", "westeros"},
		{"suffix needs dot", "Star Plus", "star plus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ChannelKey(tt.in)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChannelKey_Excluded(t *testing.T) {
	for _, in := range []string{
		"CNN West",
		"west.cnn",
		"HBO Pacific",
		"PACIFIC",
		"Showtime (West)",
		"cnn_west",
		"Starz-WEST HD",
		"WÉST",
	} {
		t.Run(in, func(t *testing.T) {
			key, ok := ChannelKey(in)
			assert.False(t, ok, "expected %q to be excluded", in)
			assert.Empty(t, key)
			assert.True(t, Excluded(in))
		})
	}
}

func TestChannelKey_NotExcluded(t *testing.T) {
	for _, in := range []string{"Westeros", "Pacifica", "Midwest Sports", "Eastwest", "westы", "west日本", "Ёwest", "pacific２"} {
		_, ok := ChannelKey(in)
		assert.True(t, ok, "did not expect %q to be excluded", in)
		assert.False(t, Excluded(in))
	}
}

func TestChannelKey_Idempotent(t *testing.T) {
	for _, in := range []string{
		"ESPN HD", "hbo.us2", "A&E (US)", "Österreich", "Fox-News.Channel",
		"  x  y  ", "Canal+", "tv.in.us", "BBC One (UK)", "E!", "日本 テレビ HD",
	} {
		first, ok := ChannelKey(in)
		if !ok {
			continue
		}
		second, ok2 := ChannelKey(first)
		assert.True(t, ok2)
		assert.Equal(t, first, second, "input %q", in)
	}
}
