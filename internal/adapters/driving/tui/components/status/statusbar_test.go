package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestBar_SetAndClear(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.Set(StateError, "boom")
	assert.Equal(t, StateError, bar.State())
	assert.Equal(t, "boom", bar.Message())

	bar.Clear()
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
}

func TestBar_View(t *testing.T) {
	km := keymap.DefaultKeyMap()

	tests := []struct {
		name    string
		state   State
		message string
		want    string
	}{
		{"ready", StateReady, "", "Ready"},
		{"ready with message", StateReady, "3 documents", "3 documents"},
		{"busy default", StateBusy, "", "Working..."},
		{"busy", StateBusy, "Asking...", "Asking..."},
		{"error", StateError, "boom", "Error: boom"},
		{"error without message", StateError, "", "Error"},
		{"not found", StateNotFound, "No relevant documents found.", "No relevant documents found."},
		{"done", StateDone, "Answered", "Answered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, km.AskHelp())
			bar.SetWidth(120)
			bar.Set(tt.state, tt.message)

			view := bar.View()

			assert.Contains(t, view, tt.want)
			assert.Contains(t, view, "enter: ask")
		})
	}
}

func TestBar_SetBindings(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km.AskHelp())
	bar.SetWidth(120)

	bar.SetBindings(km.UploadHelp())

	assert.Contains(t, bar.View(), "enter: upload")
	assert.NotContains(t, bar.View(), "enter: ask")
}
