package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{"nil", nil, ErrInvalidPorts},
		{"missing retrieval", &Ports{Document: &MockDocumentService{}}, ErrMissingRetrievalService},
		{"missing document", &Ports{Retrieval: &MockRetrievalService{}}, ErrMissingDocumentService},
		{"read only", &Ports{Retrieval: &MockRetrievalService{}, Document: &MockDocumentService{}}, nil},
		{"with ingest", &Ports{
			Retrieval: &MockRetrievalService{},
			Document:  &MockDocumentService{},
			Ingest:    &MockIngestService{},
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ports.Validate())
		})
	}
}
