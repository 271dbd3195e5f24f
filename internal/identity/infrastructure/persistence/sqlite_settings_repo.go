// Package persistence stores user settings in the local database.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/maccam912/vikunja-ai/internal/identity/domain"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/database"
)

// SQLiteSettingsRepository handles persistence for user settings using SQLite.
type SQLiteSettingsRepository struct {
	conn database.Connection
}

// NewSQLiteSettingsRepository creates a new SQLiteSettingsRepository.
func NewSQLiteSettingsRepository(conn database.Connection) *SQLiteSettingsRepository {
	return &SQLiteSettingsRepository{conn: conn}
}

func (r *SQLiteSettingsRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	query := `
		SELECT default_project_id, model, theme, system_prompt, updated_at
		FROM user_settings
		WHERE user_id = ?
	`

	s := domain.Settings{UserID: userID}
	var theme, updatedAt string
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, query, userID.String()).Scan(
		&s.DefaultProjectID,
		&s.Model,
		&theme,
		&s.SystemPrompt,
		&updatedAt,
	)
	if database.IsNoRows(err) {
		return nil, domain.ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}

	s.Theme = domain.Theme(theme)
	if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &s, nil
}

// Save upserts the settings row.
func (r *SQLiteSettingsRepository) Save(ctx context.Context, s domain.Settings) error {
	query := `
		INSERT INTO user_settings (user_id, default_project_id, model, theme, system_prompt, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			default_project_id = excluded.default_project_id,
			model = excluded.model,
			theme = excluded.theme,
			system_prompt = excluded.system_prompt,
			updated_at = excluded.updated_at
	`
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query,
		s.UserID.String(),
		s.DefaultProjectID,
		s.Model,
		string(s.Theme),
		s.SystemPrompt,
		s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}
