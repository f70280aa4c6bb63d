package domain

import "fmt"

// Built-in answer prompts. They are the defaults written to the prompt
// directory and the fallback when no prompt store is configured.
const (
	DefaultAnswerSystemPrompt = "You are an AI assistant that extracts precise answers from multiple documents."

	// DefaultAnswerUserPrompt takes documents, conversation and question, in that order.
	DefaultAnswerUserPrompt = "Documents:\n%s\n\n%sQuestion: %s\n\nExtract the exact answer from relevant documents."
)

// AnswerUserPromptVerbs is the number of %s verbs DefaultAnswerUserPrompt takes.
const AnswerUserPromptVerbs = 3

// CheckPromptVerbs reports whether prompt holds exactly want %s verbs and
// no other formatting directive. %% is a literal percent sign.
func CheckPromptVerbs(prompt string, want int) error {
	got := 0
	for i := 0; i < len(prompt); i++ {
		if prompt[i] != '%' {
			continue
		}
		if i+1 == len(prompt) {
			return fmt.Errorf("%w: prompt ends with a bare %%", ErrInvalidInput)
		}
		i++
		switch prompt[i] {
		case '%':
		case 's':
			got++
		default:
			return fmt.Errorf("%w: prompt has unsupported directive %%%c at byte %d", ErrInvalidInput, prompt[i], i-1)
		}
	}
	if got != want {
		return fmt.Errorf("%w: prompt has %d %%s placeholders, want %d", ErrInvalidInput, got, want)
	}
	return nil
}
