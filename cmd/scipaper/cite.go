// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scipaper/internal/render"
	"github.com/pdiddy/scipaper/pkg/scipaper"
)

var citeCmd = &cobra.Command{
	Use:   "cite",
	Short: "Render a BibLaTeX entry for a paper by DOI",
	RunE: func(cmd *cobra.Command, args []string) error {
		doi, _ := cmd.Flags().GetString("doi")
		if doi == "" {
			return fmt.Errorf("the --doi flag is required")
		}

		doc := scipaper.FindByDOI(cmd.Context(), doi, 0)
		if doc == nil {
			return fmt.Errorf("no backend knows %s", doi)
		}

		entryType, _ := cmd.Flags().GetString("type")
		entry := render.DocumentBibLaTeX(doc, entryType)
		if entry == "" {
			return fmt.Errorf("record for %s carries no author and cannot be cited", doi)
		}
		fmt.Fprint(cmd.OutOrStdout(), entry)
		return nil
	},
}

func init() {
	citeCmd.Flags().String("doi", "", "DOI of the paper")
	citeCmd.Flags().String("type", "", "BibLaTeX entry type (default: article)")

	rootCmd.AddCommand(citeCmd)
}
