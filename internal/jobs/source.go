// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package jobs

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ManuGH/epgmerge/internal/epg"
	"github.com/klauspost/compress/gzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

const sniffLen = 512

// source is an opened feed: decompressed content plus its resolved format.
type source struct {
	r       io.Reader
	format  epg.Format
	closers []io.Closer
}

func (s *source) Read(p []byte) (int, error) { return s.r.Read(p) }

func (s *source) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openSource opens a spooled feed. Gzip framing is recognized by its magic
// bytes regardless of the file name. When format is auto, the name hint and
// the first decompressed bytes decide.
func openSource(path, nameHint string, format epg.Format) (*source, error) {
	f, err := os.Open(path) // #nosec G304 -- path is a configured feed or our own spool file
	if err != nil {
		return nil, err
	}
	src := &source{closers: []io.Closer{f}}

	br := bufio.NewReader(f)
	var r io.Reader = br
	if head, _ := br.Peek(len(gzipMagic)); bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = src.Close()
			return nil, fmt.Errorf("gzip: %w", err)
		}
		src.closers = append(src.closers, zr)
		r = zr
	}

	if format == epg.FormatAuto || format == "" {
		pr := bufio.NewReaderSize(r, sniffLen)
		head, err := pr.Peek(sniffLen)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			_ = src.Close()
			return nil, err
		}
		format = epg.DetectFormat(nameHint, head)
		r = pr
	}
	src.r = r
	src.format = format
	return src, nil
}
