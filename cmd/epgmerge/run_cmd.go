// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/ManuGH/epgmerge/internal/config"
	"github.com/ManuGH/epgmerge/internal/history"
	"github.com/ManuGH/epgmerge/internal/jobs"
	elog "github.com/ManuGH/epgmerge/internal/log"
	"github.com/ManuGH/epgmerge/internal/telemetry"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch all feeds and write the merged guide",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			elog.Configure(elog.Config{
				Level:   cfg.LogLevel,
				Output:  stderr,
				Service: "epgmerge",
				Version: cfg.Version,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := runMerge(ctx, cfg)
			if res != nil {
				printSummary(cmd.OutOrStdout(), res)
			}
			if err != nil {
				return err
			}
			if strict && res.Failed() > 0 {
				return fmt.Errorf("%d of %d feeds failed", res.Failed(), len(res.Feeds))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any feed failed")
	return cmd
}

func runMerge(ctx context.Context, cfg config.AppConfig) (*jobs.Result, error) {
	logger := elog.WithComponent("cli")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "epgmerge",
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Str(elog.FieldEvent, "telemetry.shutdown.failed").Msg("telemetry shutdown failed")
		}
	}()

	deps := jobs.Deps{Config: cfg}
	if cfg.HistoryDB != "" {
		store, err := history.Open(ctx, cfg.HistoryDB)
		if err != nil {
			// History is optional; the merge still runs.
			logger.Warn().Err(err).Str(elog.FieldEvent, "history.open.failed").Str(elog.FieldPath, cfg.HistoryDB).Msg("run history disabled")
		} else {
			defer func() { _ = store.Close() }()
			deps.History = store
		}
	}

	return jobs.Run(ctx, deps)
}

func printSummary(w io.Writer, res *jobs.Result) {
	fmt.Fprintf(w, "run %s: %d channels, %d programmes -> %s (%s)\n",
		res.RunID, res.Channels, res.Programmes, res.Output, res.Finished.Sub(res.Started).Round(time.Millisecond))
	for _, f := range res.Feeds {
		if f.Err != nil {
			fmt.Fprintf(w, "  %-16s %-12s %v\n", f.Name, f.Status, f.Err)
			continue
		}
		fmt.Fprintf(w, "  %-16s %-12s channels=%d programmes=%d dropped=%d\n",
			f.Name, f.Status, f.Stats.ChannelsAccepted, f.Stats.ProgrammesKept, f.Stats.Dropped())
	}
}
