package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPromptVerbs(t *testing.T) {
	tests := []struct {
		prompt string
		ok     bool
	}{
		{DefaultAnswerUserPrompt, true},
		{"%s %s %s", true},
		{"%s %s %s at 100%% accuracy", true},
		{"%s %s", false},
		{"%s %s %s %s", false},
		{"%s %s %s %d", false},
		{"%s %s %s 100% sure", false},
		{"%s %s %s %", false},
		{"%s %s %5s", false},
	}
	for _, tt := range tests {
		err := CheckPromptVerbs(tt.prompt, AnswerUserPromptVerbs)
		if tt.ok {
			assert.NoError(t, err, "prompt %q", tt.prompt)
		} else {
			assert.ErrorIs(t, err, ErrInvalidInput, "prompt %q", tt.prompt)
		}
	}
}
