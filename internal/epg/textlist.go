// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// maxListLine bounds a single line of a plain channel list.
const maxListLine = 64 * 1024

// WalkList treats every non-blank, non-comment line of a plain channel list as
// a channel whose id and display name are the line itself. Lists carry no
// programmes.
func (w *Walker) WalkList(ctx context.Context, feed string, r io.Reader) (FeedResult, error) {
	fw := w.begin(feed)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxListLine)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return FeedResult{Feed: feed}, err
		}
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fw.channel(Channel{ID: line, DisplayName: []string{line}})
	}
	if err := sc.Err(); err != nil {
		return fw.fail(err)
	}
	return fw.commit(), nil
}
