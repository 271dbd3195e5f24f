package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/maccam912/vikunja-ai/internal/assistant"
	"github.com/maccam912/vikunja-ai/internal/assistant/llm"
)

type chatInput struct {
	Message string        `json:"message" jsonschema:"required"`
	History []llm.Message `json:"history,omitempty"`
}

func registerAssistantTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("assistant.chat").
		Description("Ask the built-in assistant. It may change tasks and reports every action").
		Handler(func(ctx context.Context, input chatInput) (*assistant.ChatResponse, error) {
			if app.Agent == nil {
				return nil, assistant.ErrAssistantDisabled
			}
			if input.Message == "" {
				return nil, errors.New("message is required")
			}
			messages := append(append([]llm.Message(nil), input.History...), llm.Message{Role: llm.RoleUser, Content: input.Message})
			return app.Agent.Chat(ctx, assistant.ChatRequest{Messages: messages})
		})

	return nil
}
