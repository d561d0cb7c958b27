// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scipaper CLI, a thin front-end
// over the library: metadata search, full text, PDF download, citation
// rendering, and the local paper library.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scipaper/pkg/scipaper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the scipaper CLI.
var rootCmd = &cobra.Command{
	Use:   "scipaper",
	Short: "Federated scientific paper metadata and full-text retrieval",
	Long: `scipaper looks up paper metadata, full text, and PDFs across the
configured backends and keeps a local library of downloaded papers.

Backends are selected through the Modules/Modules key of the INI
configuration; see the config flag for where that file lives.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			scipaper.SetVerbosity(slog.LevelDebug)
		}
		cfgFile, _ := cmd.Flags().GetString("config")
		return scipaper.Init(cfgFile, nil)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() == "version" {
			return
		}
		scipaper.Exit()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: /etc/scipaper/scipaper.ini, ~/.config/scipaper/scipaper.ini)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
