package farcaster

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/persuade-agent/config"
	"github.com/questx-lab/persuade-agent/pkg/api"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

const apiKeyHeader = "x-api-key"

// Endpoint talks to a Farcaster hub (reading casts) and to the Neynar v2 API
// (publishing casts and looking up users).
type Endpoint struct {
	cfg          config.FarcasterConfigs
	hubGenerator api.Generator
	apiGenerator api.Generator
}

func New(cfg config.FarcasterConfigs) *Endpoint {
	return &Endpoint{
		cfg:          cfg,
		hubGenerator: api.NewGenerator(cfg.HubEndpoints...),
		apiGenerator: api.NewGenerator(cfg.APIEndpoints...),
	}
}

func (e *Endpoint) PublishCast(ctx context.Context, text, parentHash string) (api.JSON, error) {
	if e.cfg.SignerUUID == "" {
		return nil, errors.New("signer uuid is not configured")
	}

	body := api.JSON{
		"signer_uuid": e.cfg.SignerUUID,
		"text":        text,
	}
	if parentHash != "" {
		body["parent"] = parentHash
	} else if e.cfg.ChannelID != "" {
		body["channel_id"] = e.cfg.ChannelID
	}

	resp, err := e.apiGenerator.New("/v2/farcaster/cast").
		Body(body).
		POST(ctx, api.APIKey(apiKeyHeader, e.cfg.APIKey))
	if err != nil {
		return nil, err
	}

	obj, err := e.checkResponse(ctx, resp)
	if err != nil {
		return nil, err
	}

	cast, err := obj.GetJSON("cast")
	if err != nil || cast == nil {
		// Some versions of the API return the cast at the top level.
		return obj, nil
	}

	return cast, nil
}

// CastsByParent reads the direct replies of a cast from the hub. Hub messages
// are flattened into {hash, text, author{fid}, timestamp}.
func (e *Endpoint) CastsByParent(ctx context.Context, hash string) ([]api.JSON, error) {
	resp, err := e.hubGenerator.New("/v1/castsByParent").
		Query(api.Parameter{"fid": strconv.FormatInt(e.cfg.FID, 10), "hash": hash}).
		GET(ctx, api.APIKey(apiKeyHeader, e.cfg.APIKey))
	if err != nil {
		return nil, err
	}

	obj, err := e.checkResponse(ctx, resp)
	if err != nil {
		return nil, err
	}

	messages, err := obj.GetArray("messages")
	if err != nil {
		return nil, err
	}

	casts := make([]api.JSON, 0, len(messages))
	for _, msg := range messages {
		casts = append(casts, flattenHubMessage(msg))
	}

	return casts, nil
}

// Conversation returns the direct replies of a cast through the v2 API, with
// full author profiles.
func (e *Endpoint) Conversation(ctx context.Context, hash string) ([]api.JSON, error) {
	resp, err := e.apiGenerator.New("/v2/farcaster/cast/conversation").
		Query(api.Parameter{"identifier": hash, "type": "hash", "reply_depth": "1"}).
		GET(ctx, api.APIKey(apiKeyHeader, e.cfg.APIKey))
	if err != nil {
		return nil, err
	}

	obj, err := e.checkResponse(ctx, resp)
	if err != nil {
		return nil, err
	}

	replies, err := obj.GetArray("conversation.cast.direct_replies")
	if err != nil {
		return nil, err
	}

	return replies, nil
}

func (e *Endpoint) UserByFID(ctx context.Context, fid int64) (User, error) {
	resp, err := e.apiGenerator.New("/v2/farcaster/user/bulk").
		Query(api.Parameter{"fids": strconv.FormatInt(fid, 10)}).
		GET(ctx, api.APIKey(apiKeyHeader, e.cfg.APIKey))
	if err != nil {
		return User{}, err
	}

	obj, err := e.checkResponse(ctx, resp)
	if err != nil {
		return User{}, err
	}

	users, err := obj.GetArray("users")
	if err != nil {
		return User{}, err
	}

	if len(users) == 0 {
		return User{}, fmt.Errorf("not found user with fid %d", fid)
	}

	return decodeUser(users[0])
}

func (e *Endpoint) UserByUsername(ctx context.Context, username string) (User, error) {
	resp, err := e.apiGenerator.New("/v2/farcaster/user/by_username").
		Query(api.Parameter{"username": username}).
		GET(ctx, api.APIKey(apiKeyHeader, e.cfg.APIKey))
	if err != nil {
		return User{}, err
	}

	obj, err := e.checkResponse(ctx, resp)
	if err != nil {
		return User{}, err
	}

	user, err := obj.GetJSON("user")
	if err != nil {
		return User{}, err
	}

	if user == nil {
		return User{}, fmt.Errorf("not found user %s", username)
	}

	return decodeUser(user)
}

func (e *Endpoint) checkResponse(ctx context.Context, resp *api.Response) (api.JSON, error) {
	if resp.Code != http.StatusOK {
		xcontext.Logger(ctx).Errorf("Invalid status code: %d %s", resp.Code, string(resp.RawBody))
		return nil, fmt.Errorf("invalid status code %d", resp.Code)
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, errors.New("invalid body format")
	}

	return body, nil
}

func decodeUser(obj api.JSON) (User, error) {
	user := User{}
	if err := mapstructure.Decode(map[string]any(obj), &user); err != nil {
		return User{}, err
	}

	if user.FID == 0 && user.Username == "" {
		return User{}, errors.New("cannot get user info")
	}

	return user, nil
}

func flattenHubMessage(msg api.JSON) api.JSON {
	cast := api.JSON{}
	if hash, err := msg.GetString("hash"); err == nil {
		cast["hash"] = hash
	}

	if text, err := msg.GetString("data.castAddBody.text"); err == nil {
		cast["text"] = text
	}

	if fid, err := msg.Get("data.fid"); err == nil {
		cast["author"] = map[string]any{"fid": fid}
	}

	if ts, err := msg.Get("data.timestamp"); err == nil {
		cast["timestamp"] = ts
	}

	return cast
}
