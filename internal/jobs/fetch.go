// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ManuGH/epgmerge/internal/config"
	"github.com/ManuGH/epgmerge/internal/epg"
	elog "github.com/ManuGH/epgmerge/internal/log"
	"github.com/ManuGH/epgmerge/internal/telemetry"
	"github.com/ManuGH/epgmerge/internal/version"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var errTooLarge = errors.New("feed exceeds the configured size limit")

// spool is a fetched feed on local disk.
type spool struct {
	path     string
	owned    bool // a temporary file that must be removed
	bytes    int64
	attempts int
}

func (s spool) remove() {
	if s.owned {
		_ = os.Remove(s.path)
	}
}

// fetchOutcome is one slot of fetchAll's ordered result.
type fetchOutcome struct {
	spool spool
	err   error
}

type fetcher struct {
	client     *http.Client
	limiter    *rate.Limiter
	retries    int
	backoff    time.Duration
	maxBackoff time.Duration
	maxBytes   int64
	userAgent  string
	dir        string
}

// newHTTPClient builds the feed client. The transport is instrumented so
// every attempt appears as a client span.
func newHTTPClient(cfg config.FetchConfig) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.ResponseHeaderTimeout = cfg.Timeout
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(base),
	}
}

func newFetcher(client *http.Client, cfg config.FetchConfig, dir string) *fetcher {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = version.UserAgent()
	}
	return &fetcher{
		client:     client,
		limiter:    rate.NewLimiter(limit, 1),
		retries:    cfg.Retries,
		backoff:    cfg.Backoff,
		maxBackoff: cfg.MaxBackoff,
		maxBytes:   cfg.MaxBytes,
		userAgent:  ua,
		dir:        dir,
	}
}

// fetchAll downloads feeds with at most concurrency requests in flight. The
// outcome slice is in feed order. Per-feed failures are reported in the
// outcome, only cancellation of ctx is returned as an error.
func (f *fetcher) fetchAll(ctx context.Context, feeds []config.FeedConfig, concurrency int) ([]fetchOutcome, error) {
	out := make([]fetchOutcome, len(feeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, feed := range feeds {
		g.Go(func() error {
			sp, err := f.fetch(gctx, feed)
			out[i] = fetchOutcome{spool: sp, err: err}
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, o := range out {
			o.spool.remove()
		}
		return nil, err
	}
	return out, nil
}

// fetch makes a feed available on disk. Local feeds are used in place.
func (f *fetcher) fetch(ctx context.Context, feed config.FeedConfig) (spool, error) {
	ctx = elog.ContextWithFeed(ctx, feed.Name)
	ctx, span := telemetry.Tracer().Start(ctx, "epgmerge.fetch",
		trace.WithAttributes(telemetry.FeedAttributes(feed.Name, redactURL(feed.URL), feed.Format)...))
	defer span.End()

	sp, err := f.fetchSource(ctx, feed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(telemetry.ErrorAttributes(string(epg.KindFetch))...)
		return sp, &epg.FeedError{Kind: epg.KindFetch, Feed: feed.Name, Err: err}
	}
	span.SetAttributes(attribute.Int64(telemetry.FeedBytesKey, sp.bytes), attribute.Int(telemetry.FeedAttemptKey, sp.attempts))
	span.SetStatus(codes.Ok, "")
	return sp, nil
}

func (f *fetcher) fetchSource(ctx context.Context, feed config.FeedConfig) (spool, error) {
	if config.IsLocalPath(feed.URL) {
		return localSpool(feed.URL)
	}
	u, err := url.Parse(feed.URL)
	if err != nil {
		return spool{}, err
	}
	switch u.Scheme {
	case "file":
		return localSpool(u.Path)
	case "http", "https":
		return f.download(ctx, feed)
	default:
		return spool{}, fmt.Errorf("unsupported feed scheme %q", u.Scheme)
	}
}

func localSpool(path string) (spool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return spool{}, err
	}
	if info.IsDir() {
		return spool{}, fmt.Errorf("%s is a directory", path)
	}
	return spool{path: path, bytes: info.Size(), attempts: 1}, nil
}

// download fetches an http(s) feed into a temporary file, retrying network
// errors and 5xx responses with exponential backoff and jitter.
func (f *fetcher) download(ctx context.Context, feed config.FeedConfig) (spool, error) {
	logger := elog.WithComponentFromContext(ctx, "fetch")
	maxAttempts := f.retries + 1

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return spool{}, err
		}

		sp, retry, err := f.attempt(ctx, feed)
		if err == nil {
			sp.attempts = attempt
			logger.Debug().
				Str(elog.FieldEvent, "feed.fetch.done").
				Int(elog.FieldAttempt, attempt).
				Int64(elog.FieldBytes, sp.bytes).
				Msg("feed downloaded")
			return sp, nil
		}
		lastErr = err
		if !retry || attempt == maxAttempts {
			break
		}

		wait := f.backoffFor(attempt - 1)
		logger.Warn().
			Err(err).
			Str(elog.FieldEvent, "feed.fetch.retry").
			Int(elog.FieldAttempt, attempt).
			Dur("wait", wait).
			Msg("feed download failed, retrying")
		if err := sleepWithContext(ctx, wait); err != nil {
			return spool{}, err
		}
	}
	return spool{}, lastErr
}

// attempt performs one request. retry reports whether a failure is transient.
func (f *fetcher) attempt(ctx context.Context, feed config.FeedConfig) (sp spool, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return spool{}, false, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml, application/gzip, text/plain;q=0.8, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return spool{}, ctx.Err() == nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return spool{}, shouldRetry(resp.StatusCode), fmt.Errorf("unexpected status %s", resp.Status)
	}
	if resp.ContentLength > f.maxBytes {
		return spool{}, false, fmt.Errorf("%w: content length %d > %d", errTooLarge, resp.ContentLength, f.maxBytes)
	}

	tmp, err := os.CreateTemp(f.dir, "feed-*"+spoolExt(feed.URL))
	if err != nil {
		return spool{}, false, fmt.Errorf("create spool file: %w", err)
	}
	n, err := io.Copy(tmp, io.LimitReader(resp.Body, f.maxBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > f.maxBytes {
		err = fmt.Errorf("%w: more than %d bytes", errTooLarge, f.maxBytes)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return spool{}, !errors.Is(err, errTooLarge) && ctx.Err() == nil, err
	}
	return spool{path: tmp.Name(), owned: true, bytes: n}, false, nil
}

func shouldRetry(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

func (f *fetcher) backoffFor(attempt int) time.Duration {
	wait := f.backoff * time.Duration(1<<attempt)
	if wait > f.maxBackoff || wait <= 0 {
		wait = f.maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(wait/5) + 1)) // #nosec G404 -- jitter only
	return wait + jitter
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// spoolExt keeps the remote file's extension so format detection by name
// still works on the spool file.
func spoolExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := filepath.Base(u.Path)
	ext := filepath.Ext(base)
	if ext == ".gz" {
		ext = filepath.Ext(base[:len(base)-len(ext)]) + ext
	}
	if len(ext) > 16 {
		return ""
	}
	return ext
}

// redactURL drops credentials and the query string from a URL for logs and spans.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
