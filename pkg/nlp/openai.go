package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	"github.com/sashabaranov/go-openai"

	"github.com/soundprediction/docgraph/pkg/types"
)

const extractSystemPrompt = `You extract entities and relationships from text.
Respond with JSON only, in this shape:
{"entities":[{"name":"...","type":"PERSON|ORGANIZATION|CONCEPT|TECHNOLOGY|LOCATION","description":"..."}],
 "relationships":[{"source":"...","target":"...","type":"...","description":"..."}]}
Entity names must be lowercase canonical forms. Do not invent entities that
are not present in the text.`

const summarizeSystemPrompt = `You answer broad analytical questions about a
document corpus using only the community summaries provided. Be concise and
do not fabricate specifics that the summaries do not support.`

// OpenAIClient implements Client against OpenAI or any OpenAI-compatible
// endpoint.
type OpenAIClient struct {
	client *openai.Client
	config Config
}

// NewOpenAIClient creates an enrichment client. A BaseURL in config points
// it at an OpenAI-compatible service; some of those need no real key, so a
// placeholder is substituted when apiKey is empty.
func NewOpenAIClient(apiKey string, config Config) (*OpenAIClient, error) {
	var client *openai.Client
	if config.BaseURL != "" {
		if apiKey == "" {
			apiKey = "dummy-key"
		}
		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = config.BaseURL
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		if apiKey == "" {
			return nil, fmt.Errorf("openai enrichment requires an API key")
		}
		client = openai.NewClient(apiKey)
	}

	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}
	return &OpenAIClient{client: client, config: config}, nil
}

// ExtractEntities asks the model for entities and relationships and
// repairs the returned JSON before unmarshalling; models routinely emit
// fenced or slightly malformed JSON.
func (c *OpenAIClient) ExtractEntities(ctx context.Context, text string) (*types.Extraction, error) {
	content, err := c.chat(ctx, extractSystemPrompt,
		fmt.Sprintf("Extract entities and relationships from this text:\n\n%s", text))
	if err != nil {
		return nil, err
	}

	repaired, repairErr := jsonrepair.JSONRepair(stripFences(content))
	if repairErr != nil {
		repaired = stripFences(content)
	}

	var extraction types.Extraction
	if err := json.Unmarshal([]byte(repaired), &extraction); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	if len(extraction.Entities) == 0 {
		return nil, fmt.Errorf("extraction returned no entities")
	}
	return &extraction, nil
}

// SummarizeCommunities phrases a global answer from community summaries.
func (c *OpenAIClient) SummarizeCommunities(ctx context.Context, question string, communities []*types.CommunitySummary) (string, error) {
	var sb strings.Builder
	for _, community := range communities {
		fmt.Fprintf(&sb, "- %s: %d concepts (e.g. %s)\n",
			community.Label, community.Size, strings.Join(community.Members, ", "))
	}

	content, err := c.chat(ctx, summarizeSystemPrompt,
		fmt.Sprintf("Question: %s\n\nCommunity summaries:\n%s", question, sb.String()))
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(content)
	if answer == "" {
		return "", fmt.Errorf("summarization returned empty content")
	}
	return answer, nil
}

// Close is a no-op for the OpenAI client.
func (c *OpenAIClient) Close() error {
	return nil
}

func (c *OpenAIClient) chat(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	if c.config.Temperature != nil {
		req.Temperature = *c.config.Temperature
	}
	if c.config.MaxTokens != nil {
		req.MaxTokens = *c.config.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// stripFences removes a markdown code fence wrapper if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
