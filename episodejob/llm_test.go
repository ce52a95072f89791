package episodejob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripCodeFencePassesPlainJSONThrough(t *testing.T) {
	require.Equal(t, `[{"startTime":0}]`, stripCodeFence(`[{"startTime":0}]`))
}

func TestStripCodeFenceStripsJSONFence(t *testing.T) {
	wrapped := "```json\n[{\"startTime\":0}]\n```"
	require.Equal(t, `[{"startTime":0}]`, stripCodeFence(wrapped))
}

func TestStripCodeFenceStripsBareFence(t *testing.T) {
	wrapped := "```\n[{\"startTime\":0}]\n```"
	require.Equal(t, `[{"startTime":0}]`, stripCodeFence(wrapped))
}

func TestBuildPromptIncludesEverySegment(t *testing.T) {
	prompt := buildPrompt([]TranscriptSegment{
		{Start: 0, End: 5, Text: "hello"},
		{Start: 5, End: 12.5, Text: "world"},
	})
	require.True(t, strings.Contains(prompt, "hello"))
	require.True(t, strings.Contains(prompt, "world"))
	require.True(t, strings.Contains(prompt, "[0.00-5.00]"))
	require.True(t, strings.Contains(prompt, "[5.00-12.50]"))
}
