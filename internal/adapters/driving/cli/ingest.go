package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/watch"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

var (
	ingestFormat string
	ingestWatch  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest PDF or DOCX documents",
	Long: `Extracts the text of each file, embeds it and stores it for retrieval.

Files are keyed by base name; re-ingesting a name is rejected. The format is
inferred from the extension unless --format is given.

With --watch, files already in the directory are ingested and then new files
are ingested as they appear until interrupted.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFormat, "format", "f", "", "declared format (pdf or docx)")
	ingestCmd.Flags().StringVarP(&ingestWatch, "watch", "w", "", "directory to watch for new documents")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if len(args) == 0 && ingestWatch == "" {
		return errors.New("no files given; pass paths or --watch DIR")
	}

	failed := 0
	for _, path := range args {
		res, err := ingestPath(cmd, path)
		if err != nil {
			failed++
		}
		reportIngest(cmd, path, res, err)
	}

	if ingestWatch != "" {
		w, err := watch.New(ingestWatch, ingestService, logger.L())
		if err != nil {
			return err
		}
		cmd.Printf("Watching %s (Ctrl+C to stop)\n", ingestWatch)
		if err := w.Run(cmd.Context(), func(r watch.Result) {
			reportIngest(cmd, r.Path, r.Result, r.Err)
		}); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to ingest", failed, len(args))
	}
	return nil
}

func ingestPath(cmd *cobra.Command, path string) (*domain.IngestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, domain.MaxPayloadBytes+1))
	if err != nil {
		return nil, err
	}

	return ingestService.Ingest(cmd.Context(), domain.IngestRequest{
		Filename: filepath.Base(path),
		Content:  content,
		Format:   domain.Format(ingestFormat),
	})
}

func reportIngest(cmd *cobra.Command, path string, res *domain.IngestResult, err error) {
	if err != nil {
		if domain.Classify(err) == domain.CategoryInput {
			cmd.Printf("Skipped %s: %v\n", path, err)
			return
		}
		cmd.Printf("Failed %s: %v\n", path, err)
		return
	}
	cmd.Printf("Ingested %s (id %s, position %d)\n", res.Filename, res.DocumentID, res.Position)
}
