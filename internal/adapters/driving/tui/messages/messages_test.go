package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewMenu, "menu"},
		{ViewAsk, "ask"},
		{ViewDocuments, "documents"},
		{ViewDocContent, "doc_content"},
		{ViewUpload, "upload"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestAnswerReceived_CarriesNotFound(t *testing.T) {
	msg := AnswerReceived{
		Question: "what?",
		Result:   &domain.QueryResult{NotFound: domain.NewNotFound(domain.NotFoundLowConfidence)},
	}

	assert.False(t, msg.Result.Found())
	assert.NoError(t, msg.Err)
}

func TestUploadCompleted_CarriesError(t *testing.T) {
	msg := UploadCompleted{Path: "/tmp/a.pdf", Err: domain.ErrDuplicateFilename}

	assert.True(t, errors.Is(msg.Err, domain.ErrDuplicateFilename))
	assert.Nil(t, msg.Result)
}
