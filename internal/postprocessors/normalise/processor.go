// Package normalise cleans up whitespace and layout noise left by text extraction.
package normalise

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Name is the registry name of the normaliser.
const Name = "normalise"

// DefaultMaxBlankLines is the number of blank lines kept between paragraphs.
const DefaultMaxBlankLines = 1

// Processor tidies extracted text. Whitespace runs collapse to one space and
// words hyphenated across a line break are rejoined.
type Processor struct {
	dehyphenate   bool
	maxBlankLines int
}

// Option configures the normaliser.
type Option func(*Processor)

// WithDehyphenate toggles joining "exam-\nple" into "example".
func WithDehyphenate(enabled bool) Option {
	return func(p *Processor) {
		p.dehyphenate = enabled
	}
}

// WithMaxBlankLines sets how many consecutive blank lines survive.
func WithMaxBlankLines(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.maxBlankLines = n
		}
	}
}

// New creates a normaliser with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		dehyphenate:   true,
		maxBlankLines: DefaultMaxBlankLines,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process returns the normalised text with surrounding whitespace trimmed.
func (p *Processor) Process(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.Map(mapRune, text)

	lines := strings.Split(text, "\n")
	if p.dehyphenate {
		lines = joinHyphenated(lines)
	}

	var b strings.Builder
	b.Grow(len(text))
	blank := 0
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank++
			if blank > p.maxBlankLines {
				continue
			}
		} else {
			blank = 0
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String()), nil
}

// mapRune turns line-like breaks into newlines and drops invisible runes.
func mapRune(r rune) rune {
	switch r {
	case '\r', '\f', '\v', '\u2028', '\u2029':
		return '\n'
	case '\t', '\n':
		return r
	case '\u00ad', '\ufeff', '\u200b':
		return -1
	}
	if unicode.IsControl(r) {
		return -1
	}
	return r
}

func joinHyphenated(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRightFunc(lines[i], unicode.IsSpace)
		for i+1 < len(lines) && hyphenBreak(line, lines[i+1]) {
			i++
			line = line[:len(line)-1] + strings.TrimFunc(lines[i], unicode.IsSpace)
		}
		out = append(out, line)
	}
	return out
}

// hyphenBreak reports whether line ends in a letter and a hyphen and next
// continues the word in lower case.
func hyphenBreak(line, next string) bool {
	if !strings.HasSuffix(line, "-") {
		return false
	}
	before, _ := utf8.DecodeLastRuneInString(line[:len(line)-1])
	after, _ := utf8.DecodeRuneInString(strings.TrimLeftFunc(next, unicode.IsSpace))
	return unicode.IsLetter(before) && unicode.IsLower(after)
}
