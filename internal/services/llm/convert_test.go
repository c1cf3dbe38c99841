package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverscribe/coverscribe/internal/interfaces"
)

func TestConvertMessagesToClaude(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You are an equity analyst."},
		{Role: "user", Content: "Write the memo."},
		{Role: "assistant", Content: "Draft."},
	}

	claudeMessages, system, err := convertMessagesToClaude(messages)
	require.NoError(t, err)
	assert.Equal(t, "You are an equity analyst.", system)
	assert.Len(t, claudeMessages, 2)
}

func TestConvertMessagesToClaudeRequiresUser(t *testing.T) {
	_, _, err := convertMessagesToClaude([]interfaces.Message{
		{Role: "system", Content: "only system"},
	})
	assert.Error(t, err)

	_, _, err = convertMessagesToClaude(nil)
	assert.Error(t, err)
}

func TestConvertMessagesToGemini(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You are an equity analyst."},
		{Role: "user", Content: "Write the memo."},
		{Role: "assistant", Content: "Draft."},
		{Role: "tool", Content: "fallback role"},
	}

	contents, system, err := convertMessagesToGemini(messages)
	require.NoError(t, err)
	assert.Equal(t, "You are an equity analyst.", system)
	require.Len(t, contents, 3)
	assert.Equal(t, "user", string(contents[0].Role))
	assert.Equal(t, "model", string(contents[1].Role))
	// Unknown roles default to user.
	assert.Equal(t, "user", string(contents[2].Role))
}
