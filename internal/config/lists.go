// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ReadMasterList returns the raw lines of the master channel list, in order.
// Blank and comment lines are kept so that line numbers in warnings match the file.
func ReadMasterList(path string) ([]string, error) {
	// #nosec G304 -- operator-provided path
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open master list: %w", err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read master list %s: %w", path, err)
	}
	return lines, nil
}

// LoadAliases reads cfg.AliasFile (a YAML mapping of raw channel id to master
// display name) and overlays the inline cfg.Aliases on top of it.
func LoadAliases(cfg AppConfig) (map[string]string, error) {
	out := make(map[string]string)
	if cfg.AliasFile != "" {
		// #nosec G304 -- operator-provided path
		data, err := os.ReadFile(filepath.Clean(cfg.AliasFile))
		if err != nil {
			return nil, fmt.Errorf("read alias file: %w", err)
		}
		fromFile, err := parseAliases(data)
		if err != nil {
			return nil, fmt.Errorf("parse alias file %s: %w", cfg.AliasFile, err)
		}
		maps.Copy(out, fromFile)
	}
	maps.Copy(out, cfg.Aliases)
	return out, nil
}

func parseAliases(data []byte) (map[string]string, error) {
	var m map[string]string
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return m, nil
}
