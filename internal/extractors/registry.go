package extractors

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps formats to extractors. Registering a second extractor for a
// format replaces the first.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.Format]driven.Extractor
}

// NewRegistry creates a registry holding the given extractors.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{extractors: make(map[domain.Format]driven.Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for each of its formats.
func (r *Registry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range e.Formats() {
		r.extractors[f] = e
	}
}

// Get returns the extractor for a format.
func (r *Registry) Get(format domain.Format) (driven.Extractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[format]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %q", domain.ErrUnsupportedFormat, format)
	}
	return e, nil
}

// Formats returns all formats with a registered extractor, in canonical order.
func (r *Registry) Formats() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Format
	for _, f := range domain.AllFormats() {
		if _, ok := r.extractors[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
