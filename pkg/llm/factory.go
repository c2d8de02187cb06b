package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/config"
)

// NewClient creates the provider selected by configuration. "openai"
// covers any OpenAI-compatible endpoint, including local Ollama servers.
func NewClient(cfg *config.LLMConfig, logger *zap.Logger) (Client, error) {
	clientCfg := &Config{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
	}

	switch strings.ToLower(cfg.Provider) {
	case "openai", "ollama", "":
		return NewOpenAIClient(clientCfg, logger)
	case "anthropic":
		return NewAnthropicClient(clientCfg, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// IsRetryable reports whether an upstream error is worth retrying:
// rate limits, server errors, and transport timeouts. Auth and request
// shape errors are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"429", "500", "502", "503", "504",
		"timeout", "deadline exceeded", "connection refused", "connection reset",
		"overloaded", "rate limit",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
