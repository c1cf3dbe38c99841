package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/common"
	"github.com/coverscribe/coverscribe/internal/interfaces"
)

// NewLLMService creates the configured LLM service implementation.
func NewLLMService(cfg *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	provider := cfg.LLM.DefaultProvider
	if provider == "" {
		provider = common.LLMProviderClaude
	}

	logger.Info().Str("provider", string(provider)).Msg("Initializing LLM service")

	switch provider {
	case common.LLMProviderClaude:
		return NewClaudeService(&cfg.Claude, logger)
	case common.LLMProviderGemini:
		return NewGeminiService(&cfg.Gemini, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider '%s': must be 'claude' or 'gemini'", provider)
	}
}
