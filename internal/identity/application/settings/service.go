package settings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maccam912/vikunja-ai/internal/identity/domain"
)

// Defaults fill in settings the user has not saved.
type Defaults struct {
	DefaultProjectID int64
	Model            string
}

// Update names the fields to change. Nil fields are left alone.
type Update struct {
	DefaultProjectID *int64
	Model            *string
	Theme            *string
	SystemPrompt     *string
}

// Service manages user settings.
type Service struct {
	repo     domain.SettingsRepository
	defaults Defaults
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates a settings service.
func NewService(repo domain.SettingsRepository, defaults Defaults, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, defaults: defaults, now: time.Now, logger: logger}
}

// Get returns the stored settings, or the defaults when none are stored.
// Stored zero values for project and model fall back to the defaults too.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	stored, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		return &domain.Settings{
			UserID:           userID,
			DefaultProjectID: s.defaults.DefaultProjectID,
			Model:            s.defaults.Model,
			Theme:            domain.ThemeSystem,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if stored.DefaultProjectID == 0 {
		stored.DefaultProjectID = s.defaults.DefaultProjectID
	}
	if stored.Model == "" {
		stored.Model = s.defaults.Model
	}
	if stored.Theme == "" {
		stored.Theme = domain.ThemeSystem
	}
	return stored, nil
}

// Update validates and stores the changed fields.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, update Update) (*domain.Settings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := *current
	if update.DefaultProjectID != nil {
		next.DefaultProjectID = *update.DefaultProjectID
	}
	if update.Model != nil {
		next.Model = strings.TrimSpace(*update.Model)
	}
	if update.Theme != nil {
		theme, err := domain.ParseTheme(*update.Theme)
		if err != nil {
			return nil, err
		}
		next.Theme = theme
	}
	if update.SystemPrompt != nil {
		next.SystemPrompt = strings.TrimSpace(*update.SystemPrompt)
	}
	next.UpdatedAt = s.now().UTC()

	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "settings updated", "user_id", userID, "theme", next.Theme)
	return &next, nil
}
