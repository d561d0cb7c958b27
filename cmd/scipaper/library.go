// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scipaper/internal/library"
	"github.com/pdiddy/scipaper/pkg/scipaper"
	"github.com/pdiddy/scipaper/pkg/types"
)

// libraryConfig reads the library location from the active configuration.
func libraryConfig() types.LibraryConfig {
	dir := "library"
	if c := scipaper.Config(); c != nil {
		dir = c.GetString("Library", "Dir", dir)
	}
	return types.LibraryConfig{Dir: dir}
}

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List and search the local paper library",
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every paper in the library, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := library.Open(libraryConfig())
		if err != nil {
			return err
		}
		defer lib.Close()

		entries, err := lib.List(cmd.Context())
		if err != nil {
			return err
		}
		printEntries(cmd, entries)
		return nil
	},
}

var librarySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over the stored paper metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := library.Open(libraryConfig())
		if err != nil {
			return err
		}
		defer lib.Close()

		entries, err := lib.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printEntries(cmd, entries)
		return nil
	},
}

func printEntries(cmd *cobra.Command, entries []*library.Entry) {
	for _, entry := range entries {
		doc := entry.Document
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n    %s (%d)\n    %s\n",
			doc.Title, doc.Author, doc.Year, entry.PDFPath)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d papers\n", len(entries))
}

func init() {
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(librarySearchCmd)
	rootCmd.AddCommand(libraryCmd)
}
