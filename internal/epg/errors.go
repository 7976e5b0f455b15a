// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"errors"
	"fmt"
)

// ErrorKind classifies what went wrong with a feed or a master list entry.
type ErrorKind string

const (
	KindFetch           ErrorKind = "fetch"
	KindParse           ErrorKind = "parse"
	KindTimestamp       ErrorKind = "timestamp"
	KindMasterCollision ErrorKind = "master_collision"
	KindMasterExcluded  ErrorKind = "master_excluded"
	KindAliasUnknown    ErrorKind = "alias_unknown"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrFetch     = errors.New("epg: feed could not be fetched")
	ErrParse     = errors.New("epg: feed is not well-formed")
	ErrTimestamp = errors.New("epg: malformed programme start")
)

// FeedError reports why a whole feed contributed nothing to the run.
type FeedError struct {
	Kind ErrorKind
	Feed string
	Err  error
}

func (e *FeedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("feed %q: %s", e.Feed, e.Kind)
	}
	return fmt.Sprintf("feed %q: %s: %v", e.Feed, e.Kind, e.Err)
}

// Unwrap exposes both the kind's sentinel and the underlying cause.
func (e *FeedError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := sentinel(e.Kind); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func sentinel(kind ErrorKind) error {
	switch kind {
	case KindFetch:
		return ErrFetch
	case KindParse:
		return ErrParse
	case KindTimestamp:
		return ErrTimestamp
	default:
		return nil
	}
}

// KindOf returns the kind of a FeedError in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var fe *FeedError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Warning is a non-fatal problem found while loading the master list or aliases.
type Warning struct {
	Kind   ErrorKind
	Line   int // 1-based line in the master list, 0 for aliases
	Value  string
	Detail string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s: line %d %q: %s", w.Kind, w.Line, w.Value, w.Detail)
	}
	return fmt.Sprintf("%s: %q: %s", w.Kind, w.Value, w.Detail)
}
