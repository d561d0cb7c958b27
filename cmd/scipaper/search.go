// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scipaper/internal/render"
	"github.com/pdiddy/scipaper/pkg/scipaper"
	"github.com/pdiddy/scipaper/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the configured backends for paper metadata",
	Long: `Search queries every configured backend in turn and prints the records
of the first backend that answers, completed across the others. Field
flags combine into one query; --text searches free text.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := types.NewDocument()
		query.DOI, _ = cmd.Flags().GetString("doi")
		query.Title, _ = cmd.Flags().GetString("title")
		query.Author, _ = cmd.Flags().GetString("author")
		query.Journal, _ = cmd.Flags().GetString("journal")
		query.Keywords, _ = cmd.Flags().GetString("keywords")
		query.SearchText, _ = cmd.Flags().GetString("text")

		sortFlag, _ := cmd.Flags().GetString("sort")
		sort := types.ParseSortMode(sortFlag)
		if sort == types.SortInvalid {
			return fmt.Errorf("invalid sort mode %q", sortFlag)
		}

		maxCount, _ := cmd.Flags().GetInt("max-count")
		page, _ := cmd.Flags().GetInt("page")

		result := scipaper.FillMeta(cmd.Context(), query, types.FillAll(), maxCount, page, sort)
		if result == nil {
			return fmt.Errorf("no backend returned results")
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		for i, doc := range result.Documents {
			if doc == nil {
				continue
			}
			if asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), render.DocumentJSON(doc, "", nil))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s\n", i, doc.Title)
			if doc.Author != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", doc.Author)
			}
			if doc.DOI != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "    doi: %s\n", doc.DOI)
			}
			if doc.Journal != "" || doc.Year != 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s %d\n", doc.Journal, doc.Year)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d total\n", len(result.Documents), result.TotalCount)
		return nil
	},
}

func init() {
	searchCmd.Flags().String("doi", "", "look up one record by DOI")
	searchCmd.Flags().String("title", "", "filter by title")
	searchCmd.Flags().String("author", "", "filter by author name")
	searchCmd.Flags().String("journal", "", "filter by journal name")
	searchCmd.Flags().String("keywords", "", "filter by keywords (comma-separated)")
	searchCmd.Flags().String("text", "", "free-text query")
	searchCmd.Flags().String("sort", "relevance", "sort mode: relevance, newest, oldest, citations")
	searchCmd.Flags().Int("max-count", 20, "maximum number of results to return")
	searchCmd.Flags().Int("page", 0, "result page")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
