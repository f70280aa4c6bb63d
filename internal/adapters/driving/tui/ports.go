// Package tui provides an interactive terminal user interface for docqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
type Ports struct {
	// Retrieval answers questions. Required.
	Retrieval driving.RetrievalService

	// Document lists and fetches ingested documents. Required.
	Document driving.DocumentService

	// Ingest enables the upload view when set.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
