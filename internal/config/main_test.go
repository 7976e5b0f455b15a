// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strings"
	"testing"
)

func TestMain(m *testing.M) {
	// Start every test from a clean environment.
	for _, e := range os.Environ() {
		key, _, _ := strings.Cut(e, "=")
		if strings.HasPrefix(key, "EPGMERGE_") || key == "LOG_LEVEL" {
			if err := os.Unsetenv(key); err != nil {
				panic("failed to unset env: " + err.Error())
			}
		}
	}
	os.Exit(m.Run())
}
