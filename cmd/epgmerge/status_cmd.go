// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ManuGH/epgmerge/internal/history"
	"github.com/ManuGH/epgmerge/internal/persistence/sqlite"
	"github.com/spf13/cobra"
)

type statusOptions struct {
	limit  int
	verify string
	feeds  bool
}

// newStatusCmd prints recent runs from the history database.
func newStatusCmd(root *rootOptions) *cobra.Command {
	opts := &statusOptions{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent merge runs from the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cfg.HistoryDB == "" {
				return fmt.Errorf("%w: history_db is not configured", errUsage)
			}
			if _, err := os.Stat(cfg.HistoryDB); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded yet")
					return nil
				}
				return err
			}

			out := cmd.OutOrStdout()
			if opts.verify != "" {
				if opts.verify != sqlite.CheckQuick && opts.verify != sqlite.CheckFull {
					return fmt.Errorf("%w: --verify must be %q or %q", errUsage, sqlite.CheckQuick, sqlite.CheckFull)
				}
				problems, err := sqlite.VerifyIntegrity(cmd.Context(), cfg.HistoryDB, opts.verify)
				if err != nil {
					return err
				}
				if len(problems) > 0 {
					return fmt.Errorf("history database is damaged: %s", strings.Join(problems, "; "))
				}
				fmt.Fprintf(out, "integrity (%s): ok\n", opts.verify)
			}

			store, err := history.Open(cmd.Context(), cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.Recent(cmd.Context(), opts.limit)
			if err != nil {
				return err
			}
			printRuns(out, runs, opts.feeds)
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "number of runs to show")
	cmd.Flags().StringVar(&opts.verify, "verify", "", "check database integrity first (quick|full)")
	cmd.Flags().BoolVar(&opts.feeds, "feeds", false, "show per-feed outcomes")
	return cmd
}

func printRuns(w io.Writer, runs []history.Run, feeds bool) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tFINISHED\tDURATION\tCHANNELS\tPROGRAMMES\tFAILED\tERROR")
	for _, r := range runs {
		failed := 0
		for _, f := range r.Feeds {
			if f.Status != "ok" {
				failed++
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d/%d\t%s\n",
			r.ID, r.Finished.Format(time.RFC3339), r.Finished.Sub(r.Started).Round(time.Millisecond),
			r.Channels, r.Programmes, failed, len(r.Feeds), r.Err)
		if feeds {
			for _, f := range r.Feeds {
				fmt.Fprintf(tw, "  %s\t%s\t\t%d\t%d\t\t%s\n", f.Name, f.Status, f.Channels, f.Programmes, f.Err)
			}
		}
	}
	_ = tw.Flush()
}
