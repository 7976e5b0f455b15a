// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":      FormatAuto,
		"auto":  FormatAuto,
		"XMLTV": FormatXMLTV,
		"xml":   FormatXMLTV,
		" list": FormatList,
		"txt":   FormatList,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("json")
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		file string
		head string
		want Format
	}{
		{"xml extension", "https://x/guide.xml", "", FormatXMLTV},
		{"gz xml extension", "https://x/guide.xml.gz", "\x1f\x8b", FormatXMLTV},
		{"list extension", "/srv/channels.txt", "<odd>", FormatList},
		{"sniff xml", "https://x/epg?id=1", "\n  <?xml version=\"1.0\"?>", FormatXMLTV},
		{"sniff xml after bom", "feed", "\xef\xbb\xbf<tv>", FormatXMLTV},
		{"sniff list", "feed", "HBO\nCNN\n", FormatList},
		{"empty", "feed", "", FormatList},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.file, []byte(tt.head)))
		})
	}
}
