// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package report renders the static HTML status page of the last merge run.
package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/google/renameio/v2"
)

//go:embed status.html.tmpl
var statusHTML string

var statusTmpl = template.Must(template.New("status").Parse(statusHTML))

// Page is the data shown on the status page.
type Page struct {
	RunID      string
	Finished   time.Time
	Duration   time.Duration
	Channels   int
	Programmes int
	Warnings   int
	Feeds      []Feed
}

type Feed struct {
	Name       string
	Status     string
	Err        string
	Channels   int
	Programmes int
	Dropped    int
	Bytes      int64
}

// Render writes the page as HTML.
func Render(w io.Writer, p Page) error {
	if err := statusTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render status page: %w", err)
	}
	return nil
}

// WriteFile renders the page and atomically replaces path with it.
func WriteFile(path string, p Page) error {
	var buf bytes.Buffer
	if err := Render(&buf, p); err != nil {
		return err
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write status page: %w", err)
	}
	return nil
}
