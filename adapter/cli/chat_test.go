package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maccam912/vikunja-ai/internal/assistant"
	"github.com/maccam912/vikunja-ai/internal/assistant/llm"
	"github.com/maccam912/vikunja-ai/pkg/observability"
)

// echoProvider replies with the number of messages it saw and the last one.
type echoProvider struct {
	requests []llm.Request
	err      error
}

func (p *echoProvider) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	last := req.Messages[len(req.Messages)-1]
	return &llm.Response{Content: "heard: " + last.Content, StopReason: llm.StopReasonEndTurn}, nil
}

func newChatApp(t *testing.T, provider llm.Provider) {
	t.Helper()
	logger := observability.DiscardLogger()
	agent, err := assistant.NewAgent(assistant.AgentConfig{
		Provider: provider,
		Tools:    assistant.NewToolExecutor(assistant.Handlers{}, logger),
	}, logger)
	require.NoError(t, err)
	SetApp(&App{Agent: agent})
	t.Cleanup(func() { SetApp(nil) })
}

func TestChatCmd_SingleMessage(t *testing.T) {
	provider := &echoProvider{}
	newChatApp(t, provider)

	var out bytes.Buffer
	chatCmd.SetContext(context.Background())
	chatCmd.SetOut(&out)
	require.NoError(t, chatCmd.RunE(chatCmd, []string{"what", "next?"}))

	assert.Contains(t, out.String(), "heard: what next?")
	require.Len(t, provider.requests, 1)
}

func TestChatCmd_InteractiveKeepsHistory(t *testing.T) {
	provider := &echoProvider{}
	newChatApp(t, provider)

	var out bytes.Buffer
	chatCmd.SetContext(context.Background())
	chatCmd.SetOut(&out)
	chatCmd.SetIn(strings.NewReader("first\n\nsecond\nexit\nignored\n"))
	require.NoError(t, chatCmd.RunE(chatCmd, nil))

	require.Len(t, provider.requests, 2)
	assert.Len(t, provider.requests[1].Messages, 3)
	assert.Equal(t, llm.RoleAssistant, provider.requests[1].Messages[1].Role)
	assert.Contains(t, out.String(), "heard: second")
	assert.NotContains(t, out.String(), "ignored")
}

func TestChatCmd_InteractiveReportsErrors(t *testing.T) {
	provider := &echoProvider{err: errors.New("model down")}
	newChatApp(t, provider)

	var out bytes.Buffer
	chatCmd.SetContext(context.Background())
	chatCmd.SetOut(&out)
	chatCmd.SetIn(strings.NewReader("hello\n"))
	require.NoError(t, chatCmd.RunE(chatCmd, nil))
	assert.Contains(t, out.String(), "error: ")
	assert.Contains(t, out.String(), "model down")
}

func TestChatCmd_Disabled(t *testing.T) {
	SetApp(&App{})
	defer SetApp(nil)

	chatCmd.SetContext(context.Background())
	err := chatCmd.RunE(chatCmd, []string{"hi"})
	assert.ErrorIs(t, err, assistant.ErrAssistantDisabled)
}

func TestServeCmd(t *testing.T) {
	called := false
	SetApp(&App{Serve: func(ctx context.Context) error {
		called = true
		return context.Canceled
	}})
	defer SetApp(nil)

	serveCmd.SetContext(context.Background())
	require.NoError(t, serveCmd.RunE(serveCmd, nil))
	assert.True(t, called)

	SetApp(nil)
	assert.ErrorIs(t, serveCmd.RunE(serveCmd, nil), ErrNotInitialized)
}

func TestHealthAndVersionCmd(t *testing.T) {
	SetApp(&App{})
	defer SetApp(nil)

	var out bytes.Buffer
	healthCmd.SetOut(&out)
	require.NoError(t, healthCmd.RunE(healthCmd, nil))
	assert.Contains(t, out.String(), "assistant: disabled")

	out.Reset()
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "vikunja-ai dev")
}
