package driven

import "context"

// TextProcessor transforms extracted text before it is embedded and stored.
type TextProcessor interface {
	// Name identifies the processor in errors and configuration.
	Name() string

	// Process returns the transformed text.
	Process(ctx context.Context, text string) (string, error)
}
