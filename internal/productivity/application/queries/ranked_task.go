package queries

import (
	"errors"
	"time"

	"github.com/maccam912/vikunja-ai/internal/productivity/application/services"
)

// ErrNoIncompleteTasks is returned when the snapshot has nothing left to do.
var ErrNoIncompleteTasks = errors.New("no incomplete tasks")

// RankedTaskDTO is a scored task as shown to users.
type RankedTaskDTO struct {
	Rank        int                     `json:"rank"`
	ID          int64                   `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	ProjectID   int64                   `json:"project_id"`
	Priority    string                  `json:"priority"`
	Done        bool                    `json:"done"`
	DueDate     *time.Time              `json:"due_date,omitempty"`
	StartDate   *time.Time              `json:"start_date,omitempty"`
	Score       float64                 `json:"score"`
	Blocked     bool                    `json:"blocked"`
	BlockedBy   []int64                 `json:"blocked_by,omitempty"`
	Blocking    []int64                 `json:"blocking,omitempty"`
	Breakdown   services.ScoreBreakdown `json:"breakdown"`
	Explanation string                  `json:"explanation"`
}

func toRankedDTO(rank int, st services.ScoredTask) RankedTaskDTO {
	t := st.Task
	return RankedTaskDTO{
		Rank:        rank,
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		ProjectID:   t.ProjectID,
		Priority:    t.Priority.String(),
		Done:        t.Done,
		DueDate:     t.DueDate,
		StartDate:   t.StartDate,
		Score:       st.Score,
		Blocked:     st.Breakdown.IsBlocked,
		BlockedBy:   t.BlockedByIDs(),
		Blocking:    t.BlockingIDs(),
		Breakdown:   st.Breakdown,
		Explanation: st.Breakdown.Explain(),
	}
}

// inProject keeps the entries scored for projectID. Zero keeps everything.
func inProject(scored []services.ScoredTask, projectID int64) []services.ScoredTask {
	if projectID == 0 {
		return scored
	}
	out := make([]services.ScoredTask, 0, len(scored))
	for _, st := range scored {
		if st.Task.ProjectID == projectID {
			out = append(out, st)
		}
	}
	return out
}
