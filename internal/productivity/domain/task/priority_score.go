package task

import (
	"context"
	"time"
)

// PriorityScore is a persisted snapshot of one task's computed score.
type PriorityScore struct {
	TaskID       int64
	Title        string
	Score        float64
	Subtotal     float64
	IsBlocked    bool
	BlockerIDs   []int64
	DependentIDs []int64
	Explanation  string
	CalculatedAt time.Time
}

// PriorityScoreRepository stores the latest recalculation.
type PriorityScoreRepository interface {
	ReplaceAll(ctx context.Context, scores []PriorityScore) error
	Get(ctx context.Context, taskID int64) (*PriorityScore, error)
	List(ctx context.Context, limit int) ([]PriorityScore, error)
}
