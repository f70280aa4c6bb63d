// Package truncate bounds the length of extracted text.
package truncate

import (
	"context"
	"strings"
	"unicode"
)

// Name is the registry name of the truncator.
const Name = "truncate"

// DefaultMaxChars is the character limit when none is configured.
const DefaultMaxChars = 200_000

// Processor keeps at most maxChars characters, cutting at a word boundary
// when one is close to the limit.
type Processor struct {
	maxChars int
}

// New creates a truncator. Non-positive limits use DefaultMaxChars.
func New(maxChars int) *Processor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Processor{maxChars: maxChars}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// MaxChars returns the configured limit.
func (p *Processor) MaxChars() int {
	return p.maxChars
}

// Process returns text cut to the limit.
func (p *Processor) Process(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	runes := []rune(text)
	if len(runes) <= p.maxChars {
		return text, nil
	}

	cut := runes[:p.maxChars]
	// Back up to whitespace if it is within the last tenth of the window.
	for i := len(cut) - 1; i >= len(cut)-len(cut)/10 && i > 0; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace), nil
}
