package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/persuade-agent/internal/client"
	"github.com/questx-lab/persuade-agent/internal/common"
	"github.com/questx-lab/persuade-agent/internal/entity"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

const (
	defaultScore     = 5
	defaultReasoning = "no reasoning provided"
	parseFailure     = "parse failure"
)

const systemPromptTemplate = `You are evaluating the persuasiveness of an argument on the topic: "%s".
Score the argument from 1 to 10, where 1 is the weakest and 10 is the strongest.
Consider these factors:
- Logic and reasoning
- Evidence and examples
- Creativity and originality
- Emotional appeal
- Addressing counterarguments

Provide your evaluation in JSON format with these fields:
- score: (number between 1-10)
- reasoning: (brief explanation of your score)
- passed: (boolean, true if score >= %d)`

type Evaluator struct {
	caller   client.TextGenerationCaller
	provider string
}

func NewEvaluator(caller client.TextGenerationCaller, provider string) *Evaluator {
	return &Evaluator{caller: caller, provider: provider}
}

// Evaluate scores a reply. Only a transport failure of the provider is
// returned as an error, any malformed output yields a usable Evaluation.
func (e *Evaluator) Evaluate(
	ctx context.Context, topic string, threshold int, replyText, username string,
) (entity.Evaluation, error) {
	systemPrompt := fmt.Sprintf(systemPromptTemplate, topic, threshold)
	prompt := fmt.Sprintf("Evaluate this argument from user %s:\n\n%s", username, replyText)

	start := time.Now()
	output, err := e.caller.Generate(ctx, prompt, systemPrompt)
	common.PromHistograms[common.EvaluationDurationSeconds].
		WithLabelValues(e.provider).Observe(time.Since(start).Seconds())
	if err != nil {
		common.PromCounters[common.ExternalCallFailure].WithLabelValues("generate").Inc()
		return entity.Evaluation{}, err
	}

	evaluation := ParseEvaluation(output, threshold)
	if evaluation.Reasoning == parseFailure {
		xcontext.Logger(ctx).Warnf("Cannot parse evaluation of %s: %s", username, output)
	}

	return evaluation, nil
}

type evaluationPayload struct {
	Score     *float64 `mapstructure:"score"`
	Reasoning *string  `mapstructure:"reasoning"`
	Passed    *bool    `mapstructure:"passed"`
}

// ParseEvaluation reads the first JSON object of the provider output and
// fills every missing field with its default.
func ParseEvaluation(output string, threshold int) entity.Evaluation {
	obj, ok := findJSONObject(output)
	if !ok {
		return entity.Evaluation{Score: defaultScore, Reasoning: parseFailure, Passed: false}
	}

	payload := evaluationPayload{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &payload,
	})
	if err == nil {
		// Fields which cannot be converted stay nil and get defaults.
		_ = decoder.Decode(obj)
	}

	evaluation := entity.Evaluation{Score: defaultScore, Reasoning: defaultReasoning}
	if payload.Score != nil && !math.IsNaN(*payload.Score) {
		evaluation.Score = clampScore(*payload.Score)
	}

	if payload.Reasoning != nil && strings.TrimSpace(*payload.Reasoning) != "" {
		evaluation.Reasoning = *payload.Reasoning
	}

	if payload.Passed != nil {
		evaluation.Passed = *payload.Passed
	} else {
		evaluation.Passed = evaluation.Score >= threshold
	}

	return evaluation
}

func clampScore(score float64) int {
	s := int(math.Round(score))
	if s < 1 {
		return 1
	}

	if s > 10 {
		return 10
	}

	return s
}

// findJSONObject returns the first balanced {...} substring that decodes as
// a JSON object, falling back to the whole text.
func findJSONObject(text string) (map[string]any, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchingBrace(text, start); end > 0 {
			obj := map[string]any{}
			if json.Unmarshal([]byte(text[start:end+1]), &obj) == nil {
				return obj, true
			}
		}

		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	obj := map[string]any{}
	if json.Unmarshal([]byte(strings.TrimSpace(text)), &obj) == nil {
		return obj, true
	}

	return nil, false
}

// matchingBrace returns the index of the brace closing the one at start, or
// -1. Braces inside string literals are ignored.
func matchingBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
