// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scipaper/internal/library"
	"github.com/pdiddy/scipaper/pkg/scipaper"
	"github.com/pdiddy/scipaper/pkg/types"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Download the PDF of a paper by DOI",
	Long: `Pdf resolves the paper across the configured backends and downloads
its PDF. With --out the bytes go to that file; otherwise the paper is
filed into the local library together with its metadata.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doi, _ := cmd.Flags().GetString("doi")
		if doi == "" {
			return fmt.Errorf("the --doi flag is required")
		}

		doc := scipaper.FindByDOI(cmd.Context(), doi, 0)
		if doc == nil {
			// PDF-only backends never answer metadata lookups, so a
			// bare DOI still has a chance.
			doc = types.NewDocument()
			doc.DOI = doi
		}
		blob := scipaper.GetPDF(cmd.Context(), doc)
		if blob == nil {
			return fmt.Errorf("no backend could supply the pdf of %s", doi)
		}
		if !blob.IsPDF() {
			return fmt.Errorf("downloaded data for %s is not a pdf", doi)
		}

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			if err := scipaper.SavePDF(blob, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d bytes)\n", out, len(blob.Data))
			return nil
		}

		lib, err := library.Open(libraryConfig())
		if err != nil {
			return err
		}
		defer lib.Close()
		entry, err := lib.Save(cmd.Context(), blob, scipaper.BackendName(blobBackend(blob)))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "filed %s (%d bytes)\n", entry.PDFPath, len(blob.Data))
		return nil
	},
}

// blobBackend names the backend a blob came from, when its meta says.
func blobBackend(blob *types.PdfBlob) int {
	if blob.Meta != nil {
		return blob.Meta.BackendID
	}
	return 0
}

func init() {
	pdfCmd.Flags().String("doi", "", "DOI of the paper")
	pdfCmd.Flags().String("out", "", "write the PDF to this file instead of the library")

	rootCmd.AddCommand(pdfCmd)
}
