package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/maccam912/vikunja-ai/internal/assistant"
	"github.com/maccam912/vikunja-ai/internal/assistant/llm"
	identity "github.com/maccam912/vikunja-ai/internal/identity/domain"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/queries"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/value_objects"
	"github.com/maccam912/vikunja-ai/internal/productivity/infrastructure/vikunja"
)

// Error codes returned in the error envelope.
const (
	CodeInvalidRequest = "invalid_request"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeUnavailable    = "unavailable"
	CodeInternal       = "internal_error"
)

// APIError represents an API error.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

var badRequestErrors = []error{
	task.ErrEmptyTitle,
	task.ErrInvalidProject,
	task.ErrSelfRelation,
	task.ErrInvalidRelationKind,
	task.ErrInvalidDate,
	value_objects.ErrInvalidPriority,
	commands.ErrNothingToUpdate,
	identity.ErrInvalidTheme,
	identity.ErrInvalidProjectID,
	identity.ErrSystemPromptTooLong,
	assistant.ErrEmptyConversation,
}

var unavailableErrors = []error{
	vikunja.ErrServiceUnavailable,
	llm.ErrProviderUnavailable,
	assistant.ErrAssistantDisabled,
}

// toAPIError maps domain and infrastructure errors to HTTP errors.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, task.ErrTaskNotFound), errors.Is(err, queries.ErrNoIncompleteTasks):
		return &APIError{Status: http.StatusNotFound, Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, task.ErrTaskAlreadyComplete):
		return &APIError{Status: http.StatusConflict, Code: CodeConflict, Message: err.Error()}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return &APIError{Status: http.StatusBadRequest, Code: CodeInvalidRequest, Message: err.Error()}
		}
	}
	for _, target := range unavailableErrors {
		if errors.Is(err, target) {
			return &APIError{Status: http.StatusServiceUnavailable, Code: CodeUnavailable, Message: err.Error()}
		}
	}
	return &APIError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "internal server error"}
}

// writeError writes the error envelope. Internal errors are logged, not echoed.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", apiErr.Status,
			"error", err,
		)
	}
	writeJSON(w, apiErr.Status, errorEnvelope{Error: apiErr})
}
