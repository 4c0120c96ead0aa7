package challenge

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/questx-lab/persuade-agent/internal/entity"
	"github.com/questx-lab/persuade-agent/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestParseEvaluation(t *testing.T) {
	testCases := []struct {
		name      string
		output    string
		threshold int
		want      entity.Evaluation
	}{
		{
			name:      "plain json",
			output:    `{"score": 8, "reasoning": "strong evidence", "passed": true}`,
			threshold: 7,
			want:      entity.Evaluation{Score: 8, Reasoning: "strong evidence", Passed: true},
		},
		{
			name:      "json inside prose",
			output:    "Here is my evaluation:\n```json\n{\"score\": 4, \"reasoning\": \"weak\"}\n```\nThanks.",
			threshold: 7,
			want:      entity.Evaluation{Score: 4, Reasoning: "weak", Passed: false},
		},
		{
			name:      "loosely typed values",
			output:    `{"score": "9", "reasoning": "good", "passed": "true"}`,
			threshold: 7,
			want:      entity.Evaluation{Score: 9, Reasoning: "good", Passed: true},
		},
		{
			name:      "fractional score is rounded",
			output:    `{"score": 7.6, "reasoning": "ok"}`,
			threshold: 8,
			want:      entity.Evaluation{Score: 8, Reasoning: "ok", Passed: true},
		},
		{
			name:      "score is clamped",
			output:    `{"score": 42}`,
			threshold: 7,
			want:      entity.Evaluation{Score: 10, Reasoning: defaultReasoning, Passed: true},
		},
		{
			name:      "missing fields get defaults",
			output:    `{}`,
			threshold: 7,
			want:      entity.Evaluation{Score: 5, Reasoning: defaultReasoning, Passed: false},
		},
		{
			name:      "default score passes a low threshold",
			output:    `{"reasoning": "meh"}`,
			threshold: 5,
			want:      entity.Evaluation{Score: 5, Reasoning: "meh", Passed: true},
		},
		{
			name:      "braces inside strings",
			output:    `Result: {"score": 6, "reasoning": "uses {curly} words and \"quotes\" }"}`,
			threshold: 7,
			want:      entity.Evaluation{Score: 6, Reasoning: `uses {curly} words and "quotes" }`, Passed: false},
		},
		{
			name:      "first candidate is not json",
			output:    `{not json} then {"score": 3, "reasoning": "thin"}`,
			threshold: 7,
			want:      entity.Evaluation{Score: 3, Reasoning: "thin", Passed: false},
		},
		{
			name:      "unparseable",
			output:    "I refuse to answer in JSON.",
			threshold: 7,
			want:      entity.Evaluation{Score: 5, Reasoning: parseFailure, Passed: false},
		},
		{
			name:      "empty",
			output:    "",
			threshold: 1,
			want:      entity.Evaluation{Score: 5, Reasoning: parseFailure, Passed: false},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseEvaluation(tt.output, tt.threshold))
		})
	}
}

func TestParseEvaluation_PassedFollowsThreshold(t *testing.T) {
	for score := 1; score <= 10; score++ {
		for threshold := 1; threshold <= 10; threshold++ {
			output := `{"score": ` + strconv.Itoa(score) + `}`
			evaluation := ParseEvaluation(output, threshold)
			require.Equal(t, score, evaluation.Score)
			require.Equal(t, score >= threshold, evaluation.Passed, "score=%d threshold=%d", score, threshold)
		}
	}
}

func TestEvaluator_Evaluate(t *testing.T) {
	ctx := testutil.MockContext()

	var gotPrompt, gotSystemPrompt string
	evaluator := NewEvaluator(&testutil.MockTextGenerationCaller{
		GenerateFunc: func(ctx context.Context, prompt, systemPrompt string) (string, error) {
			gotPrompt, gotSystemPrompt = prompt, systemPrompt
			return `{"score": 8, "reasoning": "convincing"}`, nil
		},
	}, "openai")

	evaluation, err := evaluator.Evaluate(ctx, "remote work increases productivity", 7, "no commute", "alice")
	require.NoError(t, err)
	require.Equal(t, entity.Evaluation{Score: 8, Reasoning: "convincing", Passed: true}, evaluation)
	require.Contains(t, gotSystemPrompt, `"remote work increases productivity"`)
	require.Contains(t, gotSystemPrompt, "true if score >= 7")
	require.True(t, strings.HasSuffix(gotPrompt, "no commute"))
	require.Contains(t, gotPrompt, "alice")
}

func TestEvaluator_ProviderError(t *testing.T) {
	ctx := testutil.MockContext()

	evaluator := NewEvaluator(&testutil.MockTextGenerationCaller{
		GenerateFunc: func(ctx context.Context, prompt, systemPrompt string) (string, error) {
			return "", errors.New("rate limited")
		},
	}, "openai")

	_, err := evaluator.Evaluate(ctx, "topic", 7, "text", "bob")
	require.Error(t, err)
}
