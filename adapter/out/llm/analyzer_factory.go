package llm

import (
	"errors"

	"analyzer_server/core/port/out"
	"analyzer_server/core/service/analysis"
	"analyzer_server/pkg/apperr"
)

// Config holds provider construction settings, one section per backend.
// Temperature and MaxTokens are passed through as-is; config.Load owns the
// defaults, so an explicit zero temperature means deterministic sampling.
type Config struct {
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	LMStudioBaseURL string
	LMStudioModel   string
	Temperature     float64
	MaxTokens       int
}

// Factory returns the ClientFactory the analysis engine uses to build the
// provider for its configured mode. The provider set is closed: exactly the
// three backends, dispatched by mode string.
func Factory(cfg Config) analysis.ClientFactory {
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens

	return func(mode string) (out.LLMClient, error) {
		switch mode {
		case analysis.ModeOpenAI:
			client, err := NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, temperature, maxTokens)
			if err != nil {
				return nil, apperr.ProviderSetup(mode, err)
			}
			return client, nil

		case analysis.ModeAnthropic:
			client, err := NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, temperature, maxTokens)
			if err != nil {
				return nil, apperr.ProviderSetup(mode, err)
			}
			return client, nil

		case analysis.ModeLMStudio:
			client, err := NewLMStudio(cfg.LMStudioBaseURL, cfg.LMStudioModel, temperature, maxTokens)
			if err != nil {
				return nil, apperr.ProviderSetup(mode, err)
			}
			return client, nil

		default:
			return nil, apperr.ProviderSetup(mode, errors.New("unknown provider mode"))
		}
	}
}
