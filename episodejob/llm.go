package episodejob

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ProposedEpisode is one entry of the LLM's JSON array response (spec §4.11).
type ProposedEpisode struct {
	StartTime   float64 `json:"startTime"`
	EndTime     float64 `json:"endTime"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
}

// LLMClient asks an external LLM to propose episode boundaries from a
// transcript (spec §6 "LLM API").
type LLMClient struct {
	client *openai.Client
	model  string
}

func NewLLMClient(apiURL, apiKey, model string) *LLMClient {
	cfg := openai.DefaultConfig(apiKey)
	if apiURL != "" {
		cfg.BaseURL = apiURL
	}
	return &LLMClient{client: openai.NewClientWithConfig(cfg), model: model}
}

func (c *LLMClient) ProposeEpisodes(ctx context.Context, segments []TranscriptSegment) ([]ProposedEpisode, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "Return only valid JSON. No prose, no markdown."},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(segments)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm returned no choices")
	}

	var episodes []ProposedEpisode
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Choices[0].Message.Content)), &episodes); err != nil {
		return nil, fmt.Errorf("failed to parse llm episode proposal: %w", err)
	}
	return episodes, nil
}

func buildPrompt(segments []TranscriptSegment) string {
	var b strings.Builder
	b.WriteString("Given the following timestamped transcript segments, propose a JSON array of episodes as ")
	b.WriteString(`objects with keys startTime, endTime, title, description. Durations between 5 and 30 minutes `)
	b.WriteString("are preferred. Segments:\n")
	for _, s := range segments {
		fmt.Fprintf(&b, "[%.2f-%.2f] %s\n", s.Start, s.End, s.Text)
	}
	return b.String()
}

// stripCodeFence tolerates a ```json ... ``` wrapper around the LLM's JSON
// response (spec §6 "the server tolerates a Markdown code-fence wrapper").
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
