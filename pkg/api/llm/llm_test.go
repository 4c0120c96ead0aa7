package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/questx-lab/persuade-agent/config"
	"github.com/questx-lab/persuade-agent/pkg/api"
	"github.com/stretchr/testify/require"
)

func mockGenerator(t *testing.T, code int, body string) *api.MockAPIGenerator {
	generator := &api.MockAPIGenerator{}
	generator.MockClient.POSTFunc = func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
		obj := api.JSON{}
		require.NoError(t, json.Unmarshal([]byte(body), &obj))
		return &api.Response{Code: code, Body: obj, RawBody: []byte(body)}, nil
	}

	return generator
}

func TestNew(t *testing.T) {
	g, err := New(config.LLMConfigs{Provider: "together"})
	require.NoError(t, err)
	require.IsType(t, &OpenAI{}, g)

	g, err = New(config.LLMConfigs{Provider: "anthropic"})
	require.NoError(t, err)
	require.IsType(t, &Anthropic{}, g)

	_, err = New(config.LLMConfigs{Provider: "unknown"})
	require.Error(t, err)
}

func TestOpenAI_Generate(t *testing.T) {
	generator := mockGenerator(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"{\"score\": 8}"}}]}`)

	e := NewOpenAI(config.LLMConfigs{Model: "gpt-4o-mini", MaxTokens: 100})
	e.apiGenerator = generator

	text, err := e.Generate(context.Background(), "argument", "system")
	require.NoError(t, err)
	require.Equal(t, `{"score": 8}`, text)
	require.Equal(t, []string{"/v1/chat/completions"}, generator.Paths)

	body := generator.MockClient.LastBody.(api.JSON)
	require.Equal(t, "gpt-4o-mini", body["model"])
	require.Len(t, body["messages"], 2)
}

func TestOpenAI_Generate_Error(t *testing.T) {
	e := NewOpenAI(config.LLMConfigs{})
	e.apiGenerator = mockGenerator(t, http.StatusUnauthorized, `{"error":{"message":"bad key"}}`)

	_, err := e.Generate(context.Background(), "argument", "")
	require.Error(t, err)

	e.apiGenerator = mockGenerator(t, http.StatusOK, `{"choices":[]}`)
	_, err = e.Generate(context.Background(), "argument", "")
	require.Error(t, err)
}

func TestAnthropic_Generate(t *testing.T) {
	generator := mockGenerator(t, http.StatusOK,
		`{"content":[{"type":"text","text":"{\"score\": 3,"},{"type":"text","text":" \"passed\": false}"}]}`)

	e := NewAnthropic(config.LLMConfigs{Model: "claude"})
	e.apiGenerator = generator

	text, err := e.Generate(context.Background(), "argument", "system")
	require.NoError(t, err)
	require.Equal(t, `{"score": 3, "passed": false}`, text)

	body := generator.MockClient.LastBody.(api.JSON)
	require.Equal(t, "system", body["system"])
}
