package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "ask")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestAskCmd_HasTopKFlag(t *testing.T) {
	flag := askCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestAskCmd_EmptyCorpus(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "ask", "How", "long", "do", "refunds", "take?")

	require.NoError(t, err)
	assert.Contains(t, out, domain.NewNotFound(domain.NotFoundNoRelevantDocuments).Message())
}

func TestAskCmd_Answers(t *testing.T) {
	setupTestServices(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "refunds.pdf", "Refunds are processed within 30 days of purchase.")
	_, err := execute(t, "ingest", path)
	require.NoError(t, err)

	out, err := execute(t, "ask", "How long do refunds take?")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Refunds are processed within 30 days."))
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "* refunds.pdf")
}

func TestAskCmd_LowConfidence(t *testing.T) {
	ts := setupTestServices(t)
	ts.llm.answer = "There is no information about warranties."
	path := writeFile(t, t.TempDir(), "refunds.pdf", "Refunds are processed within 30 days.")
	_, err := execute(t, "ingest", path)
	require.NoError(t, err)

	out, err := execute(t, "ask", "What is the warranty?")

	require.NoError(t, err)
	assert.Contains(t, out, domain.NotFoundMessage)
}

func TestAskCmd_JSONOutput(t *testing.T) {
	setupTestServices(t)
	path := writeFile(t, t.TempDir(), "refunds.pdf", "Refunds are processed within 30 days.")
	_, err := execute(t, "ingest", path)
	require.NoError(t, err)

	out, err := execute(t, "ask", "--json", "-k", "1", "--context", "we talked about returns", "refunds?")

	require.NoError(t, err)
	var got askOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Found)
	assert.Equal(t, "refunds?", got.Question)
	assert.Equal(t, []string{"refunds.pdf"}, got.Sources)
	assert.Equal(t, "refunds.pdf", got.PrimarySource)
}

func TestAskCmd_JSONNotFound(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "ask", "--json", "anything")

	require.NoError(t, err)
	var got askOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Found)
	assert.Equal(t, string(domain.NotFoundNoRelevantDocuments), got.Reason)
}

func TestAskCmd_NegativeTopK(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "ask", "-k", "-2", "refunds?")

	assert.Error(t, err)
}

func TestAskCmd_NoService(t *testing.T) {
	t.Cleanup(resetCommandState)

	_, err := execute(t, "ask", "refunds?")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval service not configured")
}
