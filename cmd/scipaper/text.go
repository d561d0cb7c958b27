// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scipaper/pkg/scipaper"
)

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Fetch the full body text of a paper by DOI",
	RunE: func(cmd *cobra.Command, args []string) error {
		doi, _ := cmd.Flags().GetString("doi")
		if doi == "" {
			return fmt.Errorf("the --doi flag is required")
		}

		doc := scipaper.FindByDOI(cmd.Context(), doi, 0)
		if doc == nil {
			return fmt.Errorf("no backend knows %s", doi)
		}
		text, ok := scipaper.GetText(cmd.Context(), doc)
		if !ok {
			return fmt.Errorf("no backend could supply the text of %s", doi)
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	textCmd.Flags().String("doi", "", "DOI of the paper")

	rootCmd.AddCommand(textCmd)
}
