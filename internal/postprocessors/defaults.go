package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/postprocessors/normalise"
	"github.com/custodia-labs/docqa/internal/postprocessors/truncate"
)

// RegisterDefaults registers the built-in processors.
func RegisterDefaults(r *Registry) {
	r.Register(normalise.Name, buildNormaliser)
	r.Register(truncate.Name, buildTruncator)
}

// buildNormaliser supports:
//   - dehyphenate (bool): join words split across lines (default: true)
//   - max_blank_lines (int): blank lines kept between paragraphs (default: 1)
func buildNormaliser(cfg map[string]any) (driven.TextProcessor, error) {
	var opts []normalise.Option
	if v, ok := cfg["dehyphenate"]; ok {
		b, isBool := v.(bool)
		if !isBool {
			return nil, fmt.Errorf("%w: normalise.dehyphenate must be a boolean", domain.ErrInvalidInput)
		}
		opts = append(opts, normalise.WithDehyphenate(b))
	}
	if n, ok := intFromConfig(cfg, "max_blank_lines"); ok {
		if n < 0 {
			return nil, fmt.Errorf("%w: normalise.max_blank_lines must not be negative", domain.ErrInvalidInput)
		}
		opts = append(opts, normalise.WithMaxBlankLines(n))
	}
	return normalise.New(opts...), nil
}

// buildTruncator supports:
//   - max_chars (int): characters kept (default: truncate.DefaultMaxChars)
func buildTruncator(cfg map[string]any) (driven.TextProcessor, error) {
	n, ok := intFromConfig(cfg, "max_chars")
	if !ok {
		return truncate.New(truncate.DefaultMaxChars), nil
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: truncate.max_chars must be positive", domain.ErrInvalidInput)
	}
	return truncate.New(n), nil
}

// intFromConfig extracts an int from a decoded TOML or JSON value.
func intFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
