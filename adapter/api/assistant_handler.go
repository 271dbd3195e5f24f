package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/maccam912/vikunja-ai/internal/assistant"
	"github.com/maccam912/vikunja-ai/internal/assistant/llm"
	identitySettings "github.com/maccam912/vikunja-ai/internal/identity/application/settings"
)

// ChatHandler serves assistant conversations.
type ChatHandler struct {
	agent  *assistant.Agent
	logger *slog.Logger
}

// NewChatHandler creates a chat handler. A nil agent answers 503.
func NewChatHandler(agent *assistant.Agent, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{agent: agent, logger: logger}
}

// chatRequest accepts either a full conversation or a single message.
// A message is appended to messages as the latest user turn.
type chatRequest struct {
	Messages []llm.Message `json:"messages"`
	Message  string        `json:"message"`
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.agent == nil {
		writeError(w, r, h.logger, assistant.ErrAssistantDisabled)
		return
	}

	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	messages := req.Messages
	if req.Message != "" {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Message})
	}

	resp, err := h.agent.Chat(r.Context(), assistant.ChatRequest{Messages: messages})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SettingsHandler reads and updates the configured user's settings.
type SettingsHandler struct {
	service *identitySettings.Service
	userID  uuid.UUID
	logger  *slog.Logger
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(service *identitySettings.Service, userID uuid.UUID, logger *slog.Logger) *SettingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsHandler{service: service, userID: userID, logger: logger}
}

type settingsRequest struct {
	DefaultProjectID *int64  `json:"default_project_id"`
	Model            *string `json:"model"`
	Theme            *string `json:"theme"`
	SystemPrompt     *string `json:"system_prompt"`
}

// Get handles GET /api/v1/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Get(r.Context(), h.userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Update handles PUT /api/v1/settings. Omitted fields keep their values.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	settings, err := h.service.Update(r.Context(), h.userID, identitySettings.Update{
		DefaultProjectID: req.DefaultProjectID,
		Model:            req.Model,
		Theme:            req.Theme,
		SystemPrompt:     req.SystemPrompt,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
