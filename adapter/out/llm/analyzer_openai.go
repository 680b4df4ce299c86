// Package llm contains the model provider adapters behind the out.LLMClient
// port: OpenAI, Anthropic, and LM Studio (OpenAI-compatible local endpoint).
package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"analyzer_server/core/domain"
)

const (
	DefaultOpenAIModel   = "gpt-3.5-turbo"
	DefaultLMStudioModel = "local-model"
	DefaultLMStudioURL   = "http://localhost:1234/v1"
	lmStudioPlaceholder  = "not-needed" // LM Studio ignores the API key
)

// OpenAIClient adapts the OpenAI chat completion API. It also serves LM
// Studio, which exposes the same API on a local base URL.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	provider    domain.AnalysisSource
}

// NewOpenAI creates a client against the OpenAI API.
func NewOpenAI(apiKey, model string, temperature float64, maxTokens int) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: float32(temperature),
		maxTokens:   maxTokens,
		provider:    domain.AnalysisSourceOpenAI,
	}, nil
}

// NewLMStudio creates a client against a local OpenAI-compatible endpoint.
// No credential is required.
func NewLMStudio(baseURL, model string, temperature float64, maxTokens int) (*OpenAIClient, error) {
	if baseURL == "" {
		baseURL = DefaultLMStudioURL
	}
	if model == "" {
		model = DefaultLMStudioModel
	}
	cfg := openai.DefaultConfig(lmStudioPlaceholder)
	cfg.BaseURL = baseURL
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: float32(temperature),
		maxTokens:   maxTokens,
		provider:    domain.AnalysisSourceLMStudio,
	}, nil
}

// Provider identifies the backend variant.
func (c *OpenAIClient) Provider() domain.AnalysisSource {
	return c.provider
}

// Complete sends a system + user chat completion and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
