package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the ingested documents"`
	Context  string `json:"context,omitempty" jsonschema:"prior conversation to take into account"`
	K        int    `json:"k,omitempty" jsonschema:"number of documents to retrieve (default 3)"`
}

// AskOutput is the output schema for the ask tool.
// Found is false when the documents do not answer the question; Message then
// explains why.
type AskOutput struct {
	Found         bool     `json:"found"`
	Answer        string   `json:"answer,omitempty"`
	Sources       []string `json:"sources,omitempty"`
	PrimarySource string   `json:"primary_source,omitempty"`
	Message       string   `json:"message,omitempty"`
	Retryable     bool     `json:"retryable,omitempty"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes one ingested document.
type DocumentOutput struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	CreatedAt  string `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the ingested documents",
	}, s.handleAsk)

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List ingested documents, newest first",
		}, s.handleListDocuments)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if input.K < 0 {
		return nil, AskOutput{}, errors.New("k must not be negative")
	}

	result, err := s.ports.Retrieval.Ask(ctx, domain.Query{
		Question: input.Question,
		History:  input.Context,
		K:        input.K,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	if !result.Found() {
		return nil, AskOutput{
			Message:   result.NotFound.Message(),
			Retryable: result.NotFound.Recoverable(),
		}, nil
	}
	return nil, AskOutput{
		Found:         true,
		Answer:        result.Answer,
		Sources:       result.Sources,
		PrimarySource: result.PrimarySource,
	}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = documentOutput(&docs[i])
	}
	return nil, output, nil
}

func documentOutput(d *domain.Document) DocumentOutput {
	return DocumentOutput{
		DocumentID: d.ID,
		Filename:   d.Filename,
		CreatedAt:  d.CreatedAt.UTC().Format(time.RFC3339),
	}
}
