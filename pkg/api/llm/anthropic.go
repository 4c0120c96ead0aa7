package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/questx-lab/persuade-agent/config"
	"github.com/questx-lab/persuade-agent/pkg/api"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

const anthropicVersion = "2023-06-01"

// Anthropic calls the Anthropic messages API.
type Anthropic struct {
	cfg          config.LLMConfigs
	apiGenerator api.Generator
}

func NewAnthropic(cfg config.LLMConfigs) *Anthropic {
	return &Anthropic{cfg: cfg, apiGenerator: api.NewGenerator(cfg.Endpoints...)}
}

func (e *Anthropic) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	body := api.JSON{
		"model":       e.cfg.Model,
		"max_tokens":  e.cfg.MaxTokens,
		"temperature": e.cfg.Temperature,
		"messages":    []api.JSON{{"role": "user", "content": prompt}},
	}
	if systemPrompt != "" {
		body["system"] = systemPrompt
	}

	resp, err := e.apiGenerator.New("/v1/messages").
		Header("anthropic-version", anthropicVersion).
		Body(body).
		POST(ctx, api.APIKey("x-api-key", e.cfg.APIKey))
	if err != nil {
		return "", err
	}

	if resp.Code != http.StatusOK {
		xcontext.Logger(ctx).Errorf("Invalid status code: %d %s", resp.Code, string(resp.RawBody))
		return "", fmt.Errorf("invalid status code %d", resp.Code)
	}

	obj, ok := resp.Body.(api.JSON)
	if !ok {
		return "", errors.New("invalid body format")
	}

	blocks, err := obj.GetArray("content")
	if err != nil {
		return "", err
	}

	texts := []string{}
	for _, block := range blocks {
		if t, _ := block.GetString("type"); t != "text" {
			continue
		}

		text, err := block.GetString("text")
		if err != nil {
			return "", err
		}
		texts = append(texts, text)
	}

	if len(texts) == 0 {
		return "", errors.New("no text in response")
	}

	return strings.Join(texts, ""), nil
}
