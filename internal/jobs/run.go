// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package jobs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/ManuGH/epgmerge/internal/config"
	"github.com/ManuGH/epgmerge/internal/epg"
	"github.com/ManuGH/epgmerge/internal/history"
	elog "github.com/ManuGH/epgmerge/internal/log"
	"github.com/ManuGH/epgmerge/internal/metrics"
	"github.com/ManuGH/epgmerge/internal/report"
	"github.com/ManuGH/epgmerge/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Run performs one merge. Individual feeds may fail without failing the run;
// the returned error is reserved for problems that leave no usable output
// (configuration, master list, aliases, output write, cancellation).
func Run(ctx context.Context, deps Deps) (*Result, error) {
	cfg := deps.Config
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	rec := deps.Metrics
	if rec == nil {
		rec = metrics.NewRecorder()
	}
	client := deps.Client
	if client == nil {
		client = newHTTPClient(cfg.Fetch)
	}

	res := &Result{
		RunID:   newID(),
		Started: clock().UTC(),
		Output:  cfg.Output.Path,
	}
	ctx = elog.ContextWithRunID(ctx, res.RunID)
	logger := elog.WithComponentFromContext(ctx, "jobs")

	ctx, span := telemetry.Tracer().Start(ctx, "epgmerge.run",
		trace.WithAttributes(telemetry.RunAttributes(res.RunID, len(cfg.Feeds))...))
	defer span.End()

	logger.Info().
		Str(elog.FieldEvent, "run.start").
		Int("feeds", len(cfg.Feeds)).
		Msg("starting merge")

	err := merge(ctx, cfg, client, rec, res, logger)
	res.Finished = clock().UTC()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Str(elog.FieldEvent, "run.failed").Msg("merge failed")
	} else {
		span.SetAttributes(telemetry.CountAttributes(res.Channels, res.Programmes, 0)...)
		span.SetStatus(codes.Ok, "")
		logger.Info().
			Str(elog.FieldEvent, "run.done").
			Int(elog.FieldChannels, res.Channels).
			Int(elog.FieldProgrammes, res.Programmes).
			Int("failed_feeds", res.Failed()).
			Dur("took", res.Finished.Sub(res.Started)).
			Msg("merge completed")
		publish(cfg, rec, res, logger)
	}

	if deps.History != nil && !errors.Is(err, context.Canceled) {
		if herr := deps.History.Record(ctx, historyRun(res, err)); herr != nil {
			logger.Warn().Err(herr).Str(elog.FieldEvent, "history.record.failed").Msg("could not record run history")
		}
	}
	return res, err
}

func merge(ctx context.Context, cfg config.AppConfig, client *http.Client, rec *metrics.Recorder, res *Result, logger zerolog.Logger) error {
	lines, err := config.ReadMasterList(cfg.MasterList)
	if err != nil {
		return err
	}
	index, warnings := epg.BuildMasterIndex(lines, elog.WithComponentFromContext(ctx, "master"))
	if index.Len() == 0 {
		return fmt.Errorf("master list %s contains no usable channels", cfg.MasterList)
	}
	aliasMap, err := config.LoadAliases(cfg)
	if err != nil {
		return err
	}
	aliases, aliasWarnings := epg.NewAliasTable(aliasMap, index, elog.WithComponentFromContext(ctx, "master"))
	res.Warnings = append(warnings, aliasWarnings...)
	rec.ObserveWarnings(res.Warnings)

	walker := &epg.Walker{
		Matcher:  epg.NewMatcher(index, aliases, cfg.FuzzyThreshold),
		Accepted: epg.NewAcceptedChannels(),
		Dedup:    epg.NewDedupSet(),
		Window:   cfg.Window(),
		Now:      res.Started,
		Logger:   elog.WithComponentFromContext(ctx, "epg"),
	}

	spoolDir, err := os.MkdirTemp("", "epgmerge-")
	if err != nil {
		return fmt.Errorf("create spool directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(spoolDir) }()

	f := newFetcher(client, cfg.Fetch, spoolDir)
	fetched, err := f.fetchAll(ctx, cfg.Feeds, cfg.Fetch.Concurrency)
	if err != nil {
		return err
	}

	var programmes []epg.Programme
	res.Feeds = make([]FeedReport, len(cfg.Feeds))
	for i, feed := range cfg.Feeds {
		fr, progs, err := walkFeed(ctx, walker, feed, fetched[i])
		fetched[i].spool.remove()
		if err != nil {
			return err
		}
		programmes = append(programmes, progs...)
		res.Feeds[i] = fr
		rec.ObserveFeed(string(fr.Status), fr.Stats)
		if fr.Bytes > 0 {
			rec.ObserveFetch(feed.Name, fr.Bytes)
		}
	}

	tv := epg.Assemble(walker.Accepted, programmes)
	res.Channels = len(tv.Channels)
	res.Programmes = len(tv.Programs)
	if err := writeOutput(cfg.Output.Path, tv); err != nil {
		return err
	}
	logger.Debug().Str(elog.FieldEvent, "output.written").Str(elog.FieldPath, cfg.Output.Path).Msg("merged guide written")
	return nil
}

// walkFeed turns one fetch outcome into a report. Only cancellation is
// returned as an error; feed failures land in the report.
func walkFeed(ctx context.Context, w *epg.Walker, feed config.FeedConfig, fo fetchOutcome) (FeedReport, []epg.Programme, error) {
	format, _ := epg.ParseFormat(feed.Format)
	fr := FeedReport{
		Name:     feed.Name,
		URL:      redactURL(feed.URL),
		Format:   format,
		Bytes:    fo.spool.bytes,
		Attempts: fo.spool.attempts,
	}
	if fo.err != nil {
		fr.Status = StatusFetchFailed
		fr.Err = fo.err
		return fr, nil, nil
	}

	ctx = elog.ContextWithFeed(ctx, feed.Name)
	ctx, span := telemetry.Tracer().Start(ctx, "epgmerge.walk",
		trace.WithAttributes(telemetry.FeedAttributes(feed.Name, fr.URL, string(format))...))
	defer span.End()
	logger := elog.WithComponentFromContext(ctx, "jobs")

	src, err := openSource(fo.spool.path, urlPath(feed.URL), format)
	if err != nil {
		fr.Status = StatusParseFailed
		fr.Err = &epg.FeedError{Kind: epg.KindParse, Feed: feed.Name, Err: err}
		span.SetStatus(codes.Error, err.Error())
		logger.Warn().Err(err).Str(elog.FieldEvent, "feed.open.failed").Msg("feed could not be opened")
		return fr, nil, nil
	}
	defer func() { _ = src.Close() }()
	fr.Format = src.format

	var result epg.FeedResult
	if src.format == epg.FormatList {
		result, err = w.WalkList(ctx, feed.Name, src)
	} else {
		result, err = w.WalkXML(ctx, feed.Name, src)
	}
	if err != nil {
		if ctx.Err() != nil {
			return fr, nil, ctx.Err()
		}
		fr.Status = StatusParseFailed
		fr.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(telemetry.ErrorAttributes(string(epg.KindParse))...)
		return fr, nil, nil
	}

	fr.Status = StatusOK
	fr.Stats = result.Stats
	span.SetAttributes(telemetry.CountAttributes(result.Stats.ChannelsAccepted, result.Stats.ProgrammesKept, result.Stats.Dropped())...)
	span.SetStatus(codes.Ok, "")
	logger.Info().
		Str(elog.FieldEvent, "feed.done").
		Str(elog.FieldFeedFormat, string(src.format)).
		Int(elog.FieldChannels, result.Stats.ChannelsAccepted).
		Int(elog.FieldProgrammes, result.Stats.ProgrammesKept).
		Int(elog.FieldDropped, result.Stats.Dropped()).
		Msg("feed merged")
	return fr, result.Programmes, nil
}

// publish writes the optional side outputs. None of them can fail the run.
func publish(cfg config.AppConfig, rec *metrics.Recorder, res *Result, logger zerolog.Logger) {
	rec.ObserveOutput(res.Channels, res.Programmes)
	rec.ObserveRun(res.Finished, res.Finished.Sub(res.Started))

	if p := cfg.Output.MetricsTextfile; p != "" {
		if err := rec.WriteTextfile(p); err != nil {
			logger.Warn().Err(err).Str(elog.FieldEvent, "metrics.write.failed").Str(elog.FieldPath, p).Msg("could not write metrics textfile")
		}
	}
	if p := cfg.Output.Report; p != "" {
		if err := report.WriteFile(p, reportPage(res)); err != nil {
			logger.Warn().Err(err).Str(elog.FieldEvent, "report.write.failed").Str(elog.FieldPath, p).Msg("could not write status page")
		}
	}
}

func reportPage(res *Result) report.Page {
	p := report.Page{
		RunID:      res.RunID,
		Finished:   res.Finished,
		Duration:   res.Finished.Sub(res.Started).Round(time.Millisecond),
		Channels:   res.Channels,
		Programmes: res.Programmes,
		Warnings:   len(res.Warnings),
		Feeds:      make([]report.Feed, 0, len(res.Feeds)),
	}
	for _, f := range res.Feeds {
		p.Feeds = append(p.Feeds, report.Feed{
			Name:       f.Name,
			Status:     string(f.Status),
			Err:        errString(f.Err),
			Channels:   f.Stats.ChannelsAccepted,
			Programmes: f.Stats.ProgrammesKept,
			Dropped:    f.Stats.Dropped(),
			Bytes:      f.Bytes,
		})
	}
	return p
}

func historyRun(res *Result, runErr error) history.Run {
	run := history.Run{
		ID:         res.RunID,
		Started:    res.Started,
		Finished:   res.Finished,
		Output:     res.Output,
		Channels:   res.Channels,
		Programmes: res.Programmes,
		Err:        errString(runErr),
		Feeds:      make([]history.Feed, 0, len(res.Feeds)),
	}
	for _, f := range res.Feeds {
		run.Feeds = append(run.Feeds, history.Feed{
			Name:       f.Name,
			URL:        f.URL,
			Status:     string(f.Status),
			Err:        errString(f.Err),
			Bytes:      f.Bytes,
			Channels:   f.Stats.ChannelsAccepted,
			Programmes: f.Stats.ProgrammesKept,
			Dropped:    f.Stats.Dropped(),
		})
	}
	return run
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// urlPath returns the path component used as a format hint.
func urlPath(raw string) string {
	if config.IsLocalPath(raw) {
		return raw
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return path.Base(raw)
}
