// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"bytes"
	"fmt"
	"path"
	"strings"
)

// Format is the shape of a feed's (decompressed) content.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatXMLTV Format = "xmltv"
	FormatList  Format = "list"
)

// ParseFormat validates a configured format name. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatXMLTV, FormatList:
		return f, nil
	case "xml":
		return FormatXMLTV, nil
	case "txt", "text":
		return FormatList, nil
	default:
		return "", fmt.Errorf("unknown feed format %q (supported: auto, xmltv, list)", s)
	}
}

// DetectFormat picks a format from a file name hint, falling back to sniffing
// the first non-blank byte of the content.
func DetectFormat(name string, head []byte) Format {
	base := strings.ToLower(path.Base(name))
	base = strings.TrimSuffix(base, ".gz")
	switch path.Ext(base) {
	case ".xml", ".xmltv":
		return FormatXMLTV
	case ".txt", ".lst", ".list":
		return FormatList
	}

	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	head = bytes.TrimLeft(head, " \t\r\n")
	if len(head) > 0 && head[0] == '<' {
		return FormatXMLTV
	}
	return FormatList
}
