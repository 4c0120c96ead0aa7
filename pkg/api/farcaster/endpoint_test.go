package farcaster

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/questx-lab/persuade-agent/config"
	"github.com/questx-lab/persuade-agent/pkg/api"
	"github.com/stretchr/testify/require"
)

func jsonResponse(t *testing.T, code int, body string) *api.Response {
	obj := api.JSON{}
	require.NoError(t, json.Unmarshal([]byte(body), &obj))
	return &api.Response{Code: code, Body: obj, RawBody: []byte(body)}
}

func newTestEndpoint(generator *api.MockAPIGenerator) *Endpoint {
	endpoint := New(config.FarcasterConfigs{FID: 42, SignerUUID: "signer", APIKey: "key"})
	endpoint.hubGenerator = generator
	endpoint.apiGenerator = generator
	return endpoint
}

func Test_Endpoint_CastsByParent(t *testing.T) {
	generator := &api.MockAPIGenerator{}
	generator.MockClient.GETFunc = func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
		return jsonResponse(t, http.StatusOK, `{"messages":[
			{"hash":"0x01","data":{"fid":7,"timestamp":1000,"castAddBody":{"text":"Remote work saves commute time"}}},
			{"hash":"0x02","data":{"fid":8}}
		]}`), nil
	}

	casts, err := newTestEndpoint(generator).CastsByParent(context.Background(), "0xroot")
	require.NoError(t, err)
	require.Len(t, casts, 2)
	require.Equal(t, []string{"/v1/castsByParent"}, generator.Paths)
	require.Equal(t, api.Parameter{"fid": "42", "hash": "0xroot"}, generator.MockClient.LastQuery)

	require.Equal(t, "0x01", casts[0]["hash"])
	require.Equal(t, "Remote work saves commute time", casts[0]["text"])
	require.Equal(t, map[string]any{"fid": float64(7)}, casts[0]["author"])

	_, hasText := casts[1]["text"]
	require.False(t, hasText)
}

func Test_Endpoint_Conversation(t *testing.T) {
	generator := &api.MockAPIGenerator{}
	generator.MockClient.GETFunc = func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
		return jsonResponse(t, http.StatusOK, `{"conversation":{"cast":{"hash":"0xroot","direct_replies":[
			{"hash":"0x01","text":"hi","author":{"fid":7,"username":"alice"}}
		]}}}`), nil
	}

	replies, err := newTestEndpoint(generator).Conversation(context.Background(), "0xroot")
	require.NoError(t, err)
	require.Len(t, replies, 1)

	username, err := replies[0].GetString("author.username")
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}

func Test_Endpoint_PublishCast(t *testing.T) {
	generator := &api.MockAPIGenerator{}
	generator.MockClient.POSTFunc = func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
		return jsonResponse(t, http.StatusOK, `{"success":true,"cast":{"hash":"0xabc","text":"hello"}}`), nil
	}

	endpoint := newTestEndpoint(generator)
	cast, err := endpoint.PublishCast(context.Background(), "hello", "0xparent")
	require.NoError(t, err)
	require.Equal(t, "0xabc", cast["hash"])

	body, ok := generator.MockClient.LastBody.(api.JSON)
	require.True(t, ok)
	require.Equal(t, "0xparent", body["parent"])
	require.Equal(t, "signer", body["signer_uuid"])

	endpoint.cfg.SignerUUID = ""
	_, err = endpoint.PublishCast(context.Background(), "hello", "")
	require.Error(t, err)
}

func Test_Endpoint_UserByFID(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		code    int
		want    string
		wantErr bool
	}{
		{
			name: "verified address first",
			body: `{"users":[{"fid":7,"username":"alice","custody_address":"0xcustody",
				"verified_addresses":{"eth_addresses":["0xverified"]}}]}`,
			code: http.StatusOK,
			want: "0xverified",
		},
		{
			name: "custody address",
			body: `{"users":[{"fid":7,"username":"alice","custody_address":"0xcustody",
				"verified_addresses":{"eth_addresses":[]}}]}`,
			code: http.StatusOK,
			want: "0xcustody",
		},
		{
			name:    "no user",
			body:    `{"users":[]}`,
			code:    http.StatusOK,
			wantErr: true,
		},
		{
			name:    "bad status",
			body:    `{"message":"rate limited"}`,
			code:    http.StatusTooManyRequests,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := &api.MockAPIGenerator{}
			generator.MockClient.GETFunc = func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
				return jsonResponse(t, tt.code, tt.body), nil
			}

			user, err := newTestEndpoint(generator).UserByFID(context.Background(), 7)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, int64(7), user.FID)
			require.Equal(t, tt.want, user.PreferredAddress())
		})
	}
}

func Test_Endpoint_UserByUsername(t *testing.T) {
	generator := &api.MockAPIGenerator{}
	generator.MockClient.GETFunc = func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
		return jsonResponse(t, http.StatusOK, `{"user":{"fid":9,"username":"bob","display_name":"Bob"}}`), nil
	}

	user, err := newTestEndpoint(generator).UserByUsername(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, "Bob", user.DisplayName)
	require.Equal(t, api.Parameter{"username": "bob"}, generator.MockClient.LastQuery)
}
