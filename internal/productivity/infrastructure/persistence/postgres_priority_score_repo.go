package persistence

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/database"
)

// PostgresPriorityScoreRepository stores priority scores in PostgreSQL with
// id lists as BIGINT[].
type PostgresPriorityScoreRepository struct {
	conn database.Connection
}

// NewPostgresPriorityScoreRepository creates a new repository.
func NewPostgresPriorityScoreRepository(conn database.Connection) *PostgresPriorityScoreRepository {
	return &PostgresPriorityScoreRepository{conn: conn}
}

// ReplaceAll swaps the stored snapshot for scores.
func (r *PostgresPriorityScoreRepository) ReplaceAll(ctx context.Context, scores []task.PriorityScore) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	if _, err := exec.Exec(ctx, `DELETE FROM priority_scores`); err != nil {
		return fmt.Errorf("clear priority scores: %w", err)
	}

	query := `
		INSERT INTO priority_scores (` + scoreColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, s := range scores {
		if _, err := exec.Exec(ctx, query,
			s.TaskID,
			s.Title,
			s.Score,
			s.Subtotal,
			s.IsBlocked,
			pq.Array(nonNil(s.BlockerIDs)),
			pq.Array(nonNil(s.DependentIDs)),
			s.Explanation,
			s.CalculatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("insert priority score %d: %w", s.TaskID, err)
		}
	}
	return nil
}

func (r *PostgresPriorityScoreRepository) Get(ctx context.Context, taskID int64) (*task.PriorityScore, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+scoreColumns+` FROM priority_scores WHERE task_id = $1`, taskID)
	score, err := scanPostgresScore(row)
	if database.IsNoRows(err) {
		return nil, task.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return score, nil
}

// List returns scores ordered by score descending, then task id.
func (r *PostgresPriorityScoreRepository) List(ctx context.Context, limit int) ([]task.PriorityScore, error) {
	query := `SELECT ` + scoreColumns + ` FROM priority_scores ORDER BY score DESC, task_id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []task.PriorityScore
	for rows.Next() {
		score, err := scanPostgresScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *score)
	}
	return scores, rows.Err()
}

func scanPostgresScore(row database.Row) (*task.PriorityScore, error) {
	var (
		s          task.PriorityScore
		blockers   pq.Int64Array
		dependents pq.Int64Array
	)
	if err := row.Scan(
		&s.TaskID,
		&s.Title,
		&s.Score,
		&s.Subtotal,
		&s.IsBlocked,
		&blockers,
		&dependents,
		&s.Explanation,
		&s.CalculatedAt,
	); err != nil {
		return nil, err
	}
	if len(blockers) > 0 {
		s.BlockerIDs = []int64(blockers)
	}
	if len(dependents) > 0 {
		s.DependentIDs = []int64(dependents)
	}
	return &s, nil
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
