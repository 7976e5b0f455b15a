// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package epg resolves feed channels against the master list and merges the
// programmes of many XMLTV feeds into one deduplicated guide.
package epg

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Generator is written into generator-info-name of every merged document.
const Generator = "epgmerge"

type TV struct {
	XMLName   xml.Name    `xml:"tv"`
	Generator string      `xml:"generator-info-name,attr,omitempty"`
	Channels  []Channel   `xml:"channel"`
	Programs  []Programme `xml:"programme"`
}

type Channel struct {
	ID          string   `xml:"id,attr"`
	DisplayName []string `xml:"display-name"`
	Icon        *Icon    `xml:"icon,omitempty"`
}

type Icon struct {
	Src string `xml:"src,attr"`
}

// Programme is one airing. Attributes and child elements that the merge does
// not interpret are carried through verbatim in Attrs and Extra.
type Programme struct {
	XMLName xml.Name   `xml:"programme"`
	Start   string     `xml:"start,attr"`
	Stop    string     `xml:"stop,attr,omitempty"`
	Channel string     `xml:"channel,attr"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Titles  []Title    `xml:"title"`
	Extra   []Element  `xml:",any"`
}

type Title struct {
	// Lang contains the language code for the title (optional).
	Lang string `xml:"lang,attr,omitempty"`
	// Text is the character data of the title element.
	Text string `xml:",chardata"`
}

// Element is an uninterpreted child element kept as raw inner XML.
type Element struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}

// Title returns the first non-blank title, trimmed.
func (p Programme) Title() string {
	for _, t := range p.Titles {
		if s := strings.TrimSpace(t.Text); s != "" {
			return s
		}
	}
	return ""
}

// Display returns the first non-blank display name, trimmed.
func (c Channel) Display() string {
	for _, n := range c.DisplayName {
		if s := strings.TrimSpace(n); s != "" {
			return s
		}
	}
	return ""
}

// WriteXMLTV encodes tv with an XML declaration.
func WriteXMLTV(w io.Writer, tv *TV) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(tv); err != nil {
		return fmt.Errorf("encode xmltv: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush xmltv: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
