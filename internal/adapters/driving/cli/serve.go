package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/custodia-labs/docqa/internal/adapters/driving/http"
	"github.com/custodia-labs/docqa/internal/logger"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API for uploads and questions.

Endpoints:
  POST /api/v1/upload      multipart upload, field "file"
  GET  /api/v1/query       ?question=...&k=...&context=...
  GET  /api/v1/documents   list ingested documents
  GET  /health             liveness
  GET  /metrics            Prometheus metrics

The vector index and document store are checked for consistency at startup.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, :8000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if ingestService == nil || retrievalService == nil || documentService == nil {
		return errors.New("services not configured")
	}

	addr := serveAddr
	if addr == "" && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			addr = settings.Server.Addr
		}
	}

	if consistencyService != nil {
		report, err := consistencyService.Check(cmd.Context())
		if err != nil {
			return fmt.Errorf("startup consistency check: %w", err)
		}
		if !report.Consistent() {
			printReport(cmd, report)
			logger.Warn("serving with an inconsistent index; run 'docqa check' for details")
		}
	}

	server, err := httpapi.NewServer(httpapi.Ports{
		Ingest:    ingestService,
		Retrieval: retrievalService,
		Document:  documentService,
	}, logger.Named("http"), httpapi.Config{
		Addr:    addr,
		Metrics: metricsHandler,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-errCh
}
