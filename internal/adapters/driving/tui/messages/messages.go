// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question input and answer view.
	ViewAsk
	// ViewDocuments lists ingested documents.
	ViewDocuments
	// ViewDocContent shows the extracted text of one document.
	ViewDocContent
	// ViewUpload ingests a file from a local path.
	ViewUpload
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewDocuments:
		return "documents"
	case ViewDocContent:
		return "doc_content"
	case ViewUpload:
		return "upload"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// AnswerReceived carries the outcome of a question.
type AnswerReceived struct {
	Question string
	Result   *domain.QueryResult
	Err      error
}

// DocumentsLoaded carries the document listing.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// DocumentSelected asks for a document's content to be shown.
// Back is the view to return to when the content view is closed.
type DocumentSelected struct {
	Filename string
	Back     ViewType
}

// DocumentLoaded carries a document fetched by filename.
type DocumentLoaded struct {
	Document *domain.Document
	Err      error
}

// UploadCompleted carries the outcome of an ingestion.
type UploadCompleted struct {
	Path   string
	Result *domain.IngestResult
	Err    error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
