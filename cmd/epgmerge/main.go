// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// epgmerge merges several EPG feeds into one guide restricted to a curated
// channel list.
//
// Usage:
//
//	epgmerge run --config config.yaml
//	epgmerge validate --config config.yaml
//	epgmerge status --config config.yaml [--limit 10] [--verify]
//	epgmerge version
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/epgmerge/internal/config"
	elog "github.com/ManuGH/epgmerge/internal/log"
	"github.com/ManuGH/epgmerge/internal/version"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// errUsage marks errors caused by invalid invocation.
var errUsage = errors.New("usage error")

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitFailure
	}
	return exitOK
}

type rootOptions struct {
	configPath string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "epgmerge",
		Short:         "Merge EPG feeds against a curated channel list",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			elog.Configure(elog.Config{
				Level:   "info",
				Output:  stderr,
				Service: "epgmerge",
				Version: version.Version,
			})
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (YAML); defaults to $EPGMERGE_CONFIG")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	root.AddCommand(
		newRunCmd(opts, stderr),
		newValidateCmd(opts),
		newStatusCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load resolves the config path and loads the effective configuration.
func (o *rootOptions) load() (config.AppConfig, error) {
	path := strings.TrimSpace(o.configPath)
	if path == "" {
		path = strings.TrimSpace(config.ParseString("EPGMERGE_CONFIG", ""))
	}
	if path == "" {
		return config.AppConfig{}, fmt.Errorf("%w: --config is required (or set EPGMERGE_CONFIG)", errUsage)
	}
	return config.NewLoader(path, version.Version).Load()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
