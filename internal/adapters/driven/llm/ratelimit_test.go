package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

type stubLLM struct {
	calls int
}

func (s *stubLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	s.calls++
	return "generated", nil
}

func (s *stubLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	s.calls++
	return "chatted", nil
}

func (s *stubLLM) ModelName() string {
	return "stub"
}

func (s *stubLLM) Ping(context.Context) error {
	return nil
}

func (s *stubLLM) Close() error {
	return nil
}

func TestWithRateLimit_Disabled(t *testing.T) {
	inner := &stubLLM{}
	assert.Same(t, inner, WithRateLimit(inner, 0, 1))
}

func TestRateLimited_Delegates(t *testing.T) {
	inner := &stubLLM{}
	svc := WithRateLimit(inner, 100, 2)
	ctx := context.Background()

	out, err := svc.Chat(ctx, nil, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "chatted", out)

	out, err = svc.Generate(ctx, "p", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "generated", out)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, "stub", svc.ModelName())
	assert.NoError(t, svc.Ping(ctx))
	assert.NoError(t, svc.Close())
}

func TestRateLimited_ContextDeadlineWhileWaiting(t *testing.T) {
	inner := &stubLLM{}
	svc := WithRateLimit(inner, 0.001, 1)

	_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Chat(ctx, nil, driven.ChatOptions{})

	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	assert.Equal(t, 1, inner.calls)
}
