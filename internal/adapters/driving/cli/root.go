// Package cli implements the docqa command line.
package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services holds the driving ports the commands use.
type Services struct {
	Ingest      driving.IngestService
	Retrieval   driving.RetrievalService
	Document    driving.DocumentService
	Consistency driving.ConsistencyService
	Settings    driving.SettingsService

	// Metrics serves Prometheus metrics from `docqa serve`. Optional.
	Metrics http.Handler
}

// Options carry global flags into a Bootstrap.
type Options struct {
	// ConfigDir overrides $DOCQA_HOME and ~/.docqa.
	ConfigDir string

	Verbose   bool
	LogFormat string

	// SettingsOnly is set for commands that only read or write settings.
	// A Bootstrap may skip building the retrieval stack.
	SettingsOnly bool
}

// Bootstrap builds the services for a command. The returned func releases them.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func(), error)

// Annotation values for annotationServices.
const (
	annotationServices = "docqa.services"
	servicesNone       = "none"
	servicesSettings   = "settings"
)

var (
	ingestService      driving.IngestService
	retrievalService   driving.RetrievalService
	documentService    driving.DocumentService
	consistencyService driving.ConsistencyService
	settingsService    driving.SettingsService
	metricsHandler     http.Handler

	bootstrap Bootstrap
	release   func()
)

var (
	configDir string
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your documents",
	Long: `docqa ingests PDF and DOCX files and answers questions from their content.

Documents are embedded into a local vector index with their text kept in a
metadata store. Questions retrieve the nearest documents and an LLM extracts
the answer. When the documents do not cover a question, docqa says so.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default $DOCQA_HOME or ~/.docqa)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log output format: console or json")
}

// SetServices injects the services used by commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	ingestService = s.Ingest
	retrievalService = s.Retrieval
	documentService = s.Document
	consistencyService = s.Consistency
	settingsService = s.Settings
	metricsHandler = s.Metrics
}

// SetBootstrap sets the function that builds services before a command runs.
// Without one, commands use whatever SetServices injected.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command and releases bootstrapped services.
func Execute(ctx context.Context) error {
	defer func() {
		if release != nil {
			release()
			release = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func prepare(cmd *cobra.Command, _ []string) error {
	if verbose {
		logger.SetVerbose(true)
	}
	if logFormat != "" {
		if err := logger.SetFormat(logFormat); err != nil {
			return err
		}
	}

	needs := cmd.Annotations[annotationServices]
	if bootstrap == nil || needs == servicesNone {
		return nil
	}

	logger.Section("Bootstrap")
	services, done, err := bootstrap(cmd.Context(), Options{
		ConfigDir:    configDir,
		Verbose:      verbose,
		LogFormat:    logFormat,
		SettingsOnly: needs == servicesSettings,
	})
	if err != nil {
		return err
	}
	SetServices(services)
	release = done
	return nil
}
