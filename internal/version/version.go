// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package version carries build information set via -ldflags.
package version

import "fmt"

var (
	// Version is the release version.
	Version = "dev"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String formats the build information for humans.
func String() string {
	return fmt.Sprintf("epgmerge %s (commit: %s, built: %s)", Version, Commit, Date)
}

// UserAgent is the HTTP User-Agent sent when fetching feeds.
func UserAgent() string {
	return "epgmerge/" + Version
}
