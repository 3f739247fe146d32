package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseText(t *testing.T) {
	t.Parallel()

	resp := &MessageResponse{
		Content: []ContentBlock{
			{Type: "text", Text: "hello "},
			{Type: "tool_use", Text: "ignored"},
			{Type: "text", Text: "world"},
		},
	}
	assert.Equal(t, "hello world", resp.Text())
}

func TestToSDKMessagesImageOrdering(t *testing.T) {
	t.Parallel()

	msgs := toSDKMessages([]Message{
		{
			Role:    "user",
			Content: "what grade is on this slab?",
			Images:  []Image{{MediaType: "image/jpeg", Data: "aGVsbG8="}},
		},
	})
	require.Len(t, msgs, 1)
	require.Len(t, msgs[0].Content, 2)
	assert.NotNil(t, msgs[0].Content[0].OfImage)
	assert.NotNil(t, msgs[0].Content[1].OfText)
}

func TestEstimateCost(t *testing.T) {
	t.Parallel()

	usage := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 4.80, usage.EstimateCost("claude-haiku-4-5-20251001"), 0.001)
	assert.Zero(t, usage.EstimateCost("unknown-model"))
}

func TestBuildCachedSystemBlocks(t *testing.T) {
	t.Parallel()

	blocks := BuildCachedSystemBlocks("instruction")
	require.Len(t, blocks, 1)
	assert.Equal(t, "instruction", blocks[0].Text)
	require.NotNil(t, blocks[0].CacheControl)
	assert.Equal(t, "1h", blocks[0].CacheControl.TTL)
}
