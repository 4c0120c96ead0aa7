package llm

import (
	"context"
	"fmt"

	"github.com/questx-lab/persuade-agent/config"
)

type Generator interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

var defaultEndpoints = map[string][]string{
	"openai":    {"https://api.openai.com"},
	"together":  {"https://api.together.xyz"},
	"anthropic": {"https://api.anthropic.com"},
}

// New returns the text generator of the configured provider.
func New(cfg config.LLMConfigs) (Generator, error) {
	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = defaultEndpoints[cfg.Provider]
	}

	switch cfg.Provider {
	case "openai", "together":
		return NewOpenAI(cfg), nil
	case "anthropic":
		return NewAnthropic(cfg), nil
	}

	return nil, fmt.Errorf("unsupported llm provider %s", cfg.Provider)
}
