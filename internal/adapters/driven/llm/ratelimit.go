package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure RateLimited implements the interface.
var _ driven.LLMService = (*RateLimited)(nil)

// RateLimited throttles calls to a hosted LLM so bursts of questions stay
// under provider quotas. Callers wait for a token or give up when their
// context ends.
type RateLimited struct {
	next    driven.LLMService
	limiter *rate.Limiter
}

// WithRateLimit wraps svc with a token bucket of rps requests per second.
// A non-positive rps returns svc unchanged.
func WithRateLimit(svc driven.LLMService, rps float64, burst int) driven.LLMService {
	if svc == nil || rps <= 0 {
		return svc
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{next: svc, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *RateLimited) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %w", domain.ErrGenerationUnavailable, err)
	}
	return nil
}

// Generate waits for a token, then delegates.
func (r *RateLimited) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	return r.next.Generate(ctx, prompt, opts)
}

// Chat waits for a token, then delegates.
func (r *RateLimited) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	return r.next.Chat(ctx, messages, opts)
}

// ModelName returns the wrapped model name.
func (r *RateLimited) ModelName() string { return r.next.ModelName() }

// Ping is not rate limited.
func (r *RateLimited) Ping(ctx context.Context) error { return r.next.Ping(ctx) }

// Close closes the wrapped service.
func (r *RateLimited) Close() error { return r.next.Close() }
