// Package domain holds the local user's assistant preferences.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxSystemPromptLength bounds the custom system prompt in bytes.
const MaxSystemPromptLength = 4000

var (
	ErrSettingsNotFound    = errors.New("settings not found")
	ErrInvalidTheme        = errors.New("invalid theme")
	ErrInvalidProjectID    = errors.New("default project id must not be negative")
	ErrSystemPromptTooLong = errors.New("system prompt is too long")
)

// Theme is the UI colour preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme validates a theme name. The empty string selects ThemeSystem.
func ParseTheme(s string) (Theme, error) {
	switch theme := Theme(strings.ToLower(strings.TrimSpace(s))); theme {
	case "":
		return ThemeSystem, nil
	case ThemeLight, ThemeDark, ThemeSystem:
		return theme, nil
	default:
		return "", ErrInvalidTheme
	}
}

// Settings are the per-user assistant preferences.
type Settings struct {
	UserID           uuid.UUID `json:"user_id"`
	DefaultProjectID int64     `json:"default_project_id"`
	Model            string    `json:"model"`
	Theme            Theme     `json:"theme"`
	SystemPrompt     string    `json:"system_prompt"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Validate checks the invariants of stored settings.
func (s Settings) Validate() error {
	if _, err := ParseTheme(string(s.Theme)); err != nil {
		return err
	}
	if s.DefaultProjectID < 0 {
		return ErrInvalidProjectID
	}
	if len(s.SystemPrompt) > MaxSystemPromptLength {
		return ErrSystemPromptTooLong
	}
	return nil
}

// SettingsRepository persists settings. Get returns ErrSettingsNotFound when
// the user has never saved any.
type SettingsRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*Settings, error)
	Save(ctx context.Context, settings Settings) error
}
