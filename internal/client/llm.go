package client

import "context"

type TextGenerationCaller interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}
