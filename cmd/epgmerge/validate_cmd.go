// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"

	"github.com/ManuGH/epgmerge/internal/config"
	"github.com/ManuGH/epgmerge/internal/epg"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// newValidateCmd checks the configuration and the curated lists it points at
// without fetching anything.
func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration, master list and aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			lines, err := config.ReadMasterList(cfg.MasterList)
			if err != nil {
				return err
			}
			index, warnings := epg.BuildMasterIndex(lines, zerolog.Nop())
			if index.Len() == 0 {
				return fmt.Errorf("master list %s contains no usable channels", cfg.MasterList)
			}
			aliasMap, err := config.LoadAliases(cfg)
			if err != nil {
				return err
			}
			aliases, aliasWarnings := epg.NewAliasTable(aliasMap, index, zerolog.Nop())
			warnings = append(warnings, aliasWarnings...)

			out := cmd.OutOrStdout()
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			fmt.Fprintf(out, "%s is valid: %d feeds, %d master channels, %d aliases\n",
				cfg.ConfigPath, len(cfg.Feeds), index.Len(), aliases.Len())
			return nil
		},
	}
}
