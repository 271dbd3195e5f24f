package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/maccam912/vikunja-ai/internal/identity/domain"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/database"
)

// PostgresSettingsRepository handles persistence for user settings using
// PostgreSQL.
type PostgresSettingsRepository struct {
	conn database.Connection
}

// NewPostgresSettingsRepository creates a new PostgresSettingsRepository.
func NewPostgresSettingsRepository(conn database.Connection) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{conn: conn}
}

func (r *PostgresSettingsRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	query := `
		SELECT default_project_id, model, theme, system_prompt, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	s := domain.Settings{UserID: userID}
	var theme string
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, query, userID).Scan(
		&s.DefaultProjectID,
		&s.Model,
		&theme,
		&s.SystemPrompt,
		&s.UpdatedAt,
	)
	if database.IsNoRows(err) {
		return nil, domain.ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Theme = domain.Theme(theme)
	return &s, nil
}

// Save upserts the settings row.
func (r *PostgresSettingsRepository) Save(ctx context.Context, s domain.Settings) error {
	query := `
		INSERT INTO user_settings (user_id, default_project_id, model, theme, system_prompt, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			default_project_id = EXCLUDED.default_project_id,
			model = EXCLUDED.model,
			theme = EXCLUDED.theme,
			system_prompt = EXCLUDED.system_prompt,
			updated_at = EXCLUDED.updated_at
	`
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query,
		s.UserID,
		s.DefaultProjectID,
		s.Model,
		string(s.Theme),
		s.SystemPrompt,
		s.UpdatedAt.UTC(),
	)
	return err
}
