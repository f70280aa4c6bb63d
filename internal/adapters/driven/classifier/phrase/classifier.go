// Package phrase classifies generated answers by looking for stock
// "I could not find it" phrasing.
package phrase

import (
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Classifier implements the interface.
var _ driven.AnswerClassifier = (*Classifier)(nil)

// DefaultPhrases are matched case-insensitively as substrings.
var DefaultPhrases = []string{
	"no mention",
	"does not appear",
	"no information",
	"not contain any information",
	"there is no",
	"unable to find",
	"not found in the provided documents",
}

// Classifier marks an answer low confidence when it contains any phrase.
type Classifier struct {
	phrases []string
}

// New creates a classifier over phrases. Nil or empty phrases mean
// DefaultPhrases. Blank entries are ignored.
func New(phrases []string) *Classifier {
	if len(phrases) == 0 {
		phrases = DefaultPhrases
	}
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Classifier{phrases: lowered}
}

// Classify returns LowConfidence for an empty answer or one containing a
// fallback phrase.
func (c *Classifier) Classify(answer string) domain.Confidence {
	text := strings.ToLower(strings.TrimSpace(answer))
	if text == "" {
		return domain.LowConfidence
	}
	for _, p := range c.phrases {
		if strings.Contains(text, p) {
			return domain.LowConfidence
		}
	}
	return domain.Confident
}

// Phrases returns the normalised phrase list.
func (c *Classifier) Phrases() []string {
	out := make([]string, len(c.phrases))
	copy(out, c.phrases)
	return out
}
