package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	assert.Equal(t, 3, ToInt(3))
	assert.Equal(t, 3, ToInt(int64(3)))
	assert.Equal(t, 3, ToInt(3.9))
	assert.Equal(t, 0, ToInt("3"))
}

func TestToFloat(t *testing.T) {
	assert.InDelta(t, 0.3, ToFloat(0.3), 1e-9)
	assert.InDelta(t, 2.0, ToFloat(int64(2)), 1e-9)
	assert.InDelta(t, 0.0, ToFloat(true), 1e-9)
}

func TestToDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, ToDuration("30s"))
	assert.Equal(t, 90*time.Second, ToDuration(int64(90)))
	assert.Equal(t, 1500*time.Millisecond, ToDuration(1.5))
	assert.Equal(t, time.Minute, ToDuration(time.Minute))
	assert.Equal(t, time.Duration(0), ToDuration("soon"))
}

func TestToStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ToStringSlice([]any{"a", 1, "b"}))
	assert.Equal(t, []string{"x"}, ToStringSlice([]string{"x"}))
	assert.Nil(t, ToStringSlice("x"))
}

func TestFlattenUnflatten(t *testing.T) {
	nested := map[string]any{
		"llm": map[string]any{
			"provider": "groq",
			"options":  map[string]any{"temperature": 0.3},
		},
		"verbose": true,
	}

	flat := Flatten(nested, "")
	assert.Equal(t, "groq", flat["llm.provider"])
	assert.Equal(t, 0.3, flat["llm.options.temperature"])
	assert.Equal(t, true, flat["verbose"])

	assert.Equal(t, nested, Unflatten(flat))
}

func TestUnflatten_Collision(t *testing.T) {
	got := Unflatten(map[string]any{"a": 1, "a.b": 2})

	assert.Equal(t, 1, got["a"])
	assert.Equal(t, 2, got["a.b"])
}
