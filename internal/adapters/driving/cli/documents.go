package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var documentsJSON bool

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "List ingested documents",
	Long:    `Lists ingested documents, newest first.`,
	RunE:    runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show [filename]",
	Short: "Print the extracted text of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

func init() {
	documentsCmd.PersistentFlags().BoolVar(&documentsJSON, "json", false, "output as JSON")
	documentsCmd.AddCommand(documentsShowCmd)
	rootCmd.AddCommand(documentsCmd)
}

// documentOutput is the JSON shape of a document.
type documentOutput struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	VectorPosition *int      `json:"vector_position"`
	CreatedAt      time.Time `json:"created_at"`
	Content        string    `json:"content,omitempty"`
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentsJSON {
		out := make([]documentOutput, len(docs))
		for i := range docs {
			out[i] = toDocumentOutput(&docs[i], false)
		}
		return printJSON(cmd, out)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].Filename)
		cmd.Printf("    ID: %s\n", docs[i].ID)
		if docs[i].HasPosition() {
			cmd.Printf("    Position: %d\n", docs[i].Position())
		}
		if !docs[i].CreatedAt.IsZero() {
			cmd.Printf("    Ingested: %s\n", docs[i].CreatedAt.Local().Format(time.DateTime))
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("document %q not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if documentsJSON {
		return printJSON(cmd, toDocumentOutput(doc, true))
	}
	cmd.Println(doc.Content)
	return nil
}

func toDocumentOutput(d *domain.Document, withContent bool) documentOutput {
	out := documentOutput{
		ID:             d.ID,
		Filename:       d.Filename,
		VectorPosition: d.VectorPosition,
		CreatedAt:      d.CreatedAt,
	}
	if withContent {
		out.Content = d.Content
	}
	return out
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
