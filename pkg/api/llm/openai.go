package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/questx-lab/persuade-agent/config"
	"github.com/questx-lab/persuade-agent/pkg/api"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

// OpenAI calls an OpenAI compatible chat completion API.
type OpenAI struct {
	cfg          config.LLMConfigs
	apiGenerator api.Generator
}

func NewOpenAI(cfg config.LLMConfigs) *OpenAI {
	return &OpenAI{cfg: cfg, apiGenerator: api.NewGenerator(cfg.Endpoints...)}
}

func (e *OpenAI) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	messages := []api.JSON{}
	if systemPrompt != "" {
		messages = append(messages, api.JSON{"role": "system", "content": systemPrompt})
	}
	messages = append(messages, api.JSON{"role": "user", "content": prompt})

	resp, err := e.apiGenerator.New("/v1/chat/completions").
		Body(api.JSON{
			"model":       e.cfg.Model,
			"messages":    messages,
			"max_tokens":  e.cfg.MaxTokens,
			"temperature": e.cfg.Temperature,
		}).
		POST(ctx, api.OAuth2("Bearer", e.cfg.APIKey))
	if err != nil {
		return "", err
	}

	if resp.Code != http.StatusOK {
		xcontext.Logger(ctx).Errorf("Invalid status code: %d %s", resp.Code, string(resp.RawBody))
		return "", fmt.Errorf("invalid status code %d", resp.Code)
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return "", errors.New("invalid body format")
	}

	choices, err := body.GetArray("choices")
	if err != nil {
		return "", err
	}

	if len(choices) == 0 {
		return "", errors.New("no choice in response")
	}

	return choices[0].GetString("message.content")
}
