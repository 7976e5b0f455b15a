// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package jobs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/epgmerge/internal/epg"
	"github.com/google/renameio/v2"
	"github.com/klauspost/compress/gzip"
)

// writeOutput atomically replaces path with the merged document. A ".gz"
// suffix selects gzip framing; the gzip header carries no name or time so
// identical input gives identical bytes.
func writeOutput(path string, tv *epg.TV) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if cleanupErr := pf.Cleanup(); cleanupErr != nil && err == nil {
			err = fmt.Errorf("cleanup pending file: %w", cleanupErr)
		}
	}()

	bw := bufio.NewWriterSize(pf, 64*1024)
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		zw, zerr := gzip.NewWriterLevel(bw, gzip.BestCompression)
		if zerr != nil {
			return fmt.Errorf("gzip writer: %w", zerr)
		}
		if err := epg.WriteXMLTV(zw, tv); err != nil {
			return fmt.Errorf("encode xmltv: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close gzip: %w", err)
		}
	} else if err := epg.WriteXMLTV(bw, tv); err != nil {
		return fmt.Errorf("encode xmltv: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}
