package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/extractors/pdf"
)

// pdfToolCheck reports whether the PDF extractor can run on this machine.
var pdfToolCheck = pdf.CheckAvailable

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the vector index against the document store",
	Long: `Compares the positions in the vector index with the positions recorded for
stored documents. Every index position must belong to exactly one document.

Also reports whether pdftotext is installed for PDF ingestion.

Exits non-zero when orphan, dangling or duplicate positions are found.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	if consistencyService == nil {
		return errors.New("consistency service not configured")
	}

	report, err := consistencyService.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("consistency check failed: %w", err)
	}

	printReport(cmd, report)
	printPDFTool(cmd)
	if !report.Consistent() {
		return domain.ErrInconsistent
	}
	return nil
}

func printReport(cmd *cobra.Command, report *domain.ConsistencyReport) {
	cmd.Printf("Index vectors: %d\n", report.IndexSize)
	cmd.Printf("Documents:     %d\n", report.Documents)
	if report.Consistent() {
		cmd.Println("Index and document store are consistent.")
		return
	}
	if len(report.OrphanPositions) > 0 {
		cmd.Printf("Orphan positions (no document): %v\n", report.OrphanPositions)
	}
	if len(report.DanglingPositions) > 0 {
		cmd.Printf("Dangling positions (beyond index): %v\n", report.DanglingPositions)
	}
	if len(report.DuplicatePositions) > 0 {
		cmd.Printf("Duplicate positions: %v\n", report.DuplicatePositions)
	}
}

func printPDFTool(cmd *cobra.Command) {
	if err := pdfToolCheck(); err != nil {
		cmd.Printf("PDF extraction: unavailable (%v)\n%s\n", err, pdf.InstallInstructions())
		return
	}
	cmd.Println("PDF extraction: pdftotext found")
}
