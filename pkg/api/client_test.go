package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_POST_FallbackToNextEndpoint(t *testing.T) {
	var gotBody, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotKey = r.Header.Get("x-api-key")
		_, _ = w.Write([]byte(`{"cast":{"hash":"0xabc"}}`))
	}))
	defer server.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	generator := NewGenerator(dead.URL, server.URL)
	for i := 0; i < 4; i++ {
		resp, err := generator.New("/v2/farcaster/cast").
			Body(JSON{"text": "hello"}).
			POST(context.Background(), APIKey("x-api-key", "secret"))
		require.NoError(t, err)
		require.True(t, resp.IsSuccess())
		require.JSONEq(t, `{"text":"hello"}`, gotBody)
		require.Equal(t, "secret", gotKey)

		hash, err := resp.Body.(JSON).GetString("cast.hash")
		require.NoError(t, err)
		require.Equal(t, "0xabc", hash)
	}
}

func TestClient_GET_AllEndpointsFail(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	_, err := NewGenerator(dead.URL).New("/x").GET(context.Background())
	require.Error(t, err)

	_, err = NewGenerator().New("/x").GET(context.Background())
	require.Error(t, err)
}

func TestJSON_GetArray(t *testing.T) {
	body, err := bytesToJSON([]byte(`{"messages":[{"hash":"0x1"},"skip",{"hash":"0x2"}]}`))
	require.NoError(t, err)

	messages, err := body.GetArray("messages")
	require.NoError(t, err)
	require.Len(t, messages, 2)

	hash, err := messages[1].GetString("hash")
	require.NoError(t, err)
	require.Equal(t, "0x2", hash)

	_, err = body.GetArray("missing")
	require.Error(t, err)
}
