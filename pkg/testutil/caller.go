package testutil

import (
	"context"

	"github.com/questx-lab/persuade-agent/internal/client"
	"github.com/questx-lab/persuade-agent/internal/entity"
	"github.com/questx-lab/persuade-agent/pkg/errorx"
)

type MockSocialCaller struct {
	PostFunc                  func(ctx context.Context, text string) (entity.RawReply, error)
	FetchRepliesFunc          func(ctx context.Context, threadID string) ([]entity.RawReply, error)
	FetchRepliesAlternateFunc func(ctx context.Context, threadID string) ([]entity.RawReply, error)
	ReplyFunc                 func(ctx context.Context, targetID, text string) (string, error)
}

func (m *MockSocialCaller) Post(ctx context.Context, text string) (entity.RawReply, error) {
	if m.PostFunc != nil {
		return m.PostFunc(ctx, text)
	}

	return nil, errorx.New(errorx.NotImplemented, "Not implemented")
}

func (m *MockSocialCaller) FetchReplies(ctx context.Context, threadID string) ([]entity.RawReply, error) {
	if m.FetchRepliesFunc != nil {
		return m.FetchRepliesFunc(ctx, threadID)
	}

	return nil, nil
}

func (m *MockSocialCaller) FetchRepliesAlternate(ctx context.Context, threadID string) ([]entity.RawReply, error) {
	if m.FetchRepliesAlternateFunc != nil {
		return m.FetchRepliesAlternateFunc(ctx, threadID)
	}

	return nil, errorx.New(errorx.NotImplemented, "Not implemented")
}

func (m *MockSocialCaller) Reply(ctx context.Context, targetID, text string) (string, error) {
	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, targetID, text)
	}

	return "", nil
}

type MockTextGenerationCaller struct {
	GenerateFunc func(ctx context.Context, prompt, systemPrompt string) (string, error)
}

func (m *MockTextGenerationCaller) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, systemPrompt)
	}

	return "", errorx.New(errorx.NotImplemented, "Not implemented")
}

type MockTokenTransferCaller struct {
	TransferFunc func(ctx context.Context, address, amount string) (string, error)
}

func (m *MockTokenTransferCaller) Transfer(ctx context.Context, address, amount string) (string, error) {
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, address, amount)
	}

	return "", errorx.New(errorx.NotImplemented, "Not implemented")
}

type MockIdentityCaller struct {
	ResolveAddressFunc func(ctx context.Context, identity client.Identity) (string, error)
}

func (m *MockIdentityCaller) ResolveAddress(ctx context.Context, identity client.Identity) (string, error) {
	if m.ResolveAddressFunc != nil {
		return m.ResolveAddressFunc(ctx, identity)
	}

	return "", errorx.New(errorx.NotImplemented, "Not implemented")
}
