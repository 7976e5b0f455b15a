// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package normalize

import (
	"strings"
	"testing"
)

func FuzzChannelKey(f *testing.F) {
	for _, seed := range []string{
		"ESPN HD", "hbo.us2", "CNN West", "Westeros", "A&E", "Österreich",
		"", ".", "....us", "west", "(pacific)", "\u200bhd\u200b", "tv.in.us2",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, in string) {
		key, ok := ChannelKey(in)
		if !ok {
			if key != "" {
				t.Fatalf("excluded name %q returned key %q", in, key)
			}
			return
		}
		again, ok := ChannelKey(key)
		if !ok {
			t.Fatalf("key %q of %q became excluded on second pass", key, in)
		}
		if again != key {
			t.Fatalf("not idempotent: %q -> %q -> %q", in, key, again)
		}
		if strings.Contains(key, "  ") || strings.TrimSpace(key) != key {
			t.Fatalf("whitespace not collapsed in %q", key)
		}
	})
}
