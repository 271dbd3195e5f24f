// Package persistence stores priority score snapshots locally.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/database"
)

const scoreColumns = `task_id, title, score, subtotal, is_blocked, blocker_ids, dependent_ids, explanation, calculated_at`

// SQLitePriorityScoreRepository stores scores in SQLite with id lists as
// JSON text.
type SQLitePriorityScoreRepository struct {
	conn database.Connection
}

// NewSQLitePriorityScoreRepository creates a new repository.
func NewSQLitePriorityScoreRepository(conn database.Connection) *SQLitePriorityScoreRepository {
	return &SQLitePriorityScoreRepository{conn: conn}
}

// ReplaceAll swaps the stored snapshot for scores. Run it inside a unit of
// work so readers never see a partial snapshot.
func (r *SQLitePriorityScoreRepository) ReplaceAll(ctx context.Context, scores []task.PriorityScore) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	if _, err := exec.Exec(ctx, `DELETE FROM priority_scores`); err != nil {
		return fmt.Errorf("clear priority scores: %w", err)
	}

	query := `INSERT INTO priority_scores (` + scoreColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, s := range scores {
		blockers, err := encodeIDs(s.BlockerIDs)
		if err != nil {
			return err
		}
		dependents, err := encodeIDs(s.DependentIDs)
		if err != nil {
			return err
		}
		if _, err := exec.Exec(ctx, query,
			s.TaskID,
			s.Title,
			s.Score,
			s.Subtotal,
			s.IsBlocked,
			blockers,
			dependents,
			s.Explanation,
			s.CalculatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert priority score %d: %w", s.TaskID, err)
		}
	}
	return nil
}

func (r *SQLitePriorityScoreRepository) Get(ctx context.Context, taskID int64) (*task.PriorityScore, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+scoreColumns+` FROM priority_scores WHERE task_id = ?`, taskID)
	score, err := scanSQLiteScore(row)
	if database.IsNoRows(err) {
		return nil, task.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return score, nil
}

// List returns scores ordered by score descending, then task id. A
// non-positive limit returns everything.
func (r *SQLitePriorityScoreRepository) List(ctx context.Context, limit int) ([]task.PriorityScore, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+scoreColumns+` FROM priority_scores ORDER BY score DESC, task_id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []task.PriorityScore
	for rows.Next() {
		score, err := scanSQLiteScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *score)
	}
	return scores, rows.Err()
}

func scanSQLiteScore(row database.Row) (*task.PriorityScore, error) {
	var (
		s            task.PriorityScore
		blockers     string
		dependents   string
		calculatedAt string
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
		&calculatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if s.BlockerIDs, err = decodeIDs(blockers); err != nil {
		return nil, err
	}
	if s.DependentIDs, err = decodeIDs(dependents); err != nil {
		return nil, err
	}
	if s.CalculatedAt, err = time.Parse(time.RFC3339Nano, calculatedAt); err != nil {
		return nil, fmt.Errorf("parse calculated_at: %w", err)
	}
	return &s, nil
}

func encodeIDs(ids []int64) (string, error) {
	if ids == nil {
		ids = []int64{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode ids: %w", err)
	}
	return string(raw), nil
}

func decodeIDs(raw string) ([]int64, error) {
	var ids []int64
	if raw == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}
