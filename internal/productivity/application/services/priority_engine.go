package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/value_objects"
)

// ErrInvalidEngineConfig is returned by Validate.
var ErrInvalidEngineConfig = errors.New("invalid priority engine config")

// PriorityEngineConfig holds every constant used to score a task.
type PriorityEngineConfig struct {
	// PriorityWeights is indexed by priority ordinal, unset through do_now.
	PriorityWeights []float64 `yaml:"priority_weights"`

	OverdueScore  float64 `yaml:"overdue_score"`
	Due24hScore   float64 `yaml:"due_24h_score"`
	Due3dScore    float64 `yaml:"due_3d_score"`
	Due7dScore    float64 `yaml:"due_7d_score"`
	DueLaterScore float64 `yaml:"due_later_score"`

	FutureStartScore float64 `yaml:"future_start_score"`
	StartedScore     float64 `yaml:"started_score"`

	AgeBonusPerDay float64 `yaml:"age_bonus_per_day"`
	AgeBonusCap    float64 `yaml:"age_bonus_cap"`

	BlockingBonus float64 `yaml:"blocking_bonus"`
	InheritRatio  float64 `yaml:"inherit_ratio"`

	BlockedMultiplier float64 `yaml:"blocked_multiplier"`
	BlockedFloor      float64 `yaml:"blocked_floor"`
}

// DefaultPriorityEngineConfig returns a production-friendly configuration.
func DefaultPriorityEngineConfig() PriorityEngineConfig {
	return PriorityEngineConfig{
		PriorityWeights:   []float64{5, 10, 20, 30, 40, 50},
		OverdueScore:      50,
		Due24hScore:       35,
		Due3dScore:        20,
		Due7dScore:        10,
		DueLaterScore:     0,
		FutureStartScore:  -4,
		StartedScore:      4,
		AgeBonusPerDay:    0.5,
		AgeBonusCap:       5,
		BlockingBonus:     15,
		InheritRatio:      0.5,
		BlockedMultiplier: 0.3,
		BlockedFloor:      1,
	}
}

// Validate checks the orderings the scoring rules depend on.
func (c PriorityEngineConfig) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidEngineConfig, fmt.Sprintf(format, args...))
	}

	if len(c.PriorityWeights) != int(value_objects.PriorityDoNow)+1 {
		return fail("want %d priority weights, got %d", int(value_objects.PriorityDoNow)+1, len(c.PriorityWeights))
	}
	for i := 1; i < len(c.PriorityWeights); i++ {
		if c.PriorityWeights[i] < c.PriorityWeights[i-1] {
			return fail("priority weights must not decrease")
		}
	}
	if !(c.OverdueScore > c.Due24hScore && c.Due24hScore > c.Due3dScore &&
		c.Due3dScore > c.Due7dScore && c.Due7dScore > c.DueLaterScore && c.DueLaterScore >= 0) {
		return fail("due bands must strictly decrease toward a non-negative baseline")
	}
	if c.FutureStartScore >= 0 || c.StartedScore <= 0 {
		return fail("future start must be negative and started must be positive")
	}
	if c.PriorityWeights[0]+c.FutureStartScore < 0 {
		return fail("lowest priority weight plus future start must not be negative")
	}
	if c.AgeBonusPerDay < 0 || c.AgeBonusCap < 0 {
		return fail("age bonus must be non-negative")
	}
	if c.BlockingBonus < 0 {
		return fail("blocking bonus must be non-negative")
	}
	if c.InheritRatio <= 0 || c.InheritRatio >= 1 {
		return fail("inherit ratio must be in (0,1)")
	}
	if c.BlockedMultiplier <= 0 || c.BlockedMultiplier > 1 {
		return fail("blocked multiplier must be in (0,1]")
	}
	if c.BlockedFloor < 0 {
		return fail("blocked floor must be non-negative")
	}
	return nil
}

// ScoreBreakdown is the component-by-component account of one score.
type ScoreBreakdown struct {
	TaskID         int64                  `json:"task_id"`
	Completed      bool                   `json:"completed"`
	Priority       value_objects.Priority `json:"priority"`
	PriorityScore  float64                `json:"priority_score"`
	DueDateScore   float64                `json:"due_date_score"`
	HasDueDate     bool                   `json:"has_due_date"`
	StartDateScore float64                `json:"start_date_score"`
	AgeScore       float64                `json:"age_score"`
	BlockingBonus  float64                `json:"blocking_bonus"`
	DependentCount int                    `json:"dependent_count"`
	BlockerCount   int                    `json:"blocker_count"`
	IsBlocked      bool                   `json:"is_blocked"`
	// Subtotal is the score before the blocked penalty.
	Subtotal float64 `json:"subtotal"`
	Total    float64 `json:"total"`
}

// Base returns the score before any relation effects.
func (b ScoreBreakdown) Base() float64 {
	return b.PriorityScore + b.DueDateScore + b.StartDateScore + b.AgeScore
}

// Explain renders the breakdown as a single line.
func (b ScoreBreakdown) Explain() string {
	if b.Completed {
		return "completed"
	}
	due := "none"
	if b.HasDueDate {
		due = fmt.Sprintf("%.2f", b.DueDateScore)
	}
	return fmt.Sprintf(
		"priority=%.2f due=%s start=%.2f age=%.2f blocking=%.2f blocked=%t total=%.2f",
		b.PriorityScore, due, b.StartDateScore, b.AgeScore, b.BlockingBonus, b.IsBlocked, b.Total,
	)
}

// ScoredTask is a task annotated with its computed score.
type ScoredTask struct {
	Task      task.Task
	Score     float64
	Breakdown ScoreBreakdown
}

// PriorityEngine ranks tasks. It keeps no state between calls, so one engine
// may be shared by concurrent callers.
type PriorityEngine struct {
	config PriorityEngineConfig
	now    func() time.Time
}

// EngineOption configures a PriorityEngine.
type EngineOption func(*PriorityEngine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *PriorityEngine) {
		e.now = now
	}
}

// NewPriorityEngine creates a new engine with the given configuration.
func NewPriorityEngine(cfg PriorityEngineConfig, opts ...EngineOption) *PriorityEngine {
	e := &PriorityEngine{config: cfg, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine's constants.
func (e *PriorityEngine) Config() PriorityEngineConfig {
	return e.config
}

// PriorityWeight returns the contribution of a declared priority.
func (e *PriorityEngine) PriorityWeight(p value_objects.Priority) float64 {
	if !p.IsValid() || int(p) >= len(e.config.PriorityWeights) {
		return 0
	}
	return e.config.PriorityWeights[p]
}

// DueDateScore returns the due-date contribution and whether a due date exists.
// Each band includes its nearer edge: due exactly at now is overdue and due in
// exactly 24h is in the 24h band.
func (e *PriorityEngine) DueDateScore(due *time.Time, now time.Time) (float64, bool) {
	if due == nil {
		return 0, false
	}
	until := due.Sub(now)
	switch {
	case until <= 0:
		return e.config.OverdueScore, true
	case until <= 24*time.Hour:
		return e.config.Due24hScore, true
	case until <= 72*time.Hour:
		return e.config.Due3dScore, true
	case until <= 7*24*time.Hour:
		return e.config.Due7dScore, true
	default:
		return e.config.DueLaterScore, true
	}
}

// StartDateScore returns a negative adjustment for future starts, a positive
// one for tasks already started, and 0 without a start date.
func (e *PriorityEngine) StartDateScore(start *time.Time, now time.Time) float64 {
	if start == nil {
		return 0
	}
	if start.After(now) {
		return e.config.FutureStartScore
	}
	return e.config.StartedScore
}

// AgeScore grows with time since the last update up to a cap.
func (e *PriorityEngine) AgeScore(updated *time.Time, now time.Time) float64 {
	if updated == nil || !updated.Before(now) {
		return 0
	}
	days := now.Sub(*updated).Hours() / 24
	return math.Min(e.config.AgeBonusCap, days*e.config.AgeBonusPerDay)
}

// Blockers returns the tasks t is declared blocked by, resolved against tasks.
func Blockers(t task.Task, tasks []task.Task) []task.Task {
	return derefAll(newSnapshot(tasks).resolve(t.ID, t.BlockedByIDs()))
}

// Dependents returns the tasks t is declared blocking, resolved against tasks.
func Dependents(t task.Task, tasks []task.Task) []task.Task {
	return derefAll(newSnapshot(tasks).resolve(t.ID, t.BlockingIDs()))
}

// IsBlocked reports whether any of t's blockers is still incomplete.
// Completed tasks are never blocked.
func IsBlocked(t task.Task, tasks []task.Task) bool {
	if t.Done {
		return false
	}
	return countIncomplete(newSnapshot(tasks).resolve(t.ID, t.BlockedByIDs())) > 0
}

// Score returns the total score of t within the snapshot.
func (e *PriorityEngine) Score(t task.Task, tasks []task.Task) float64 {
	return e.Breakdown(t, tasks).Total
}

// Breakdown computes the score of t within the snapshot, component by component.
func (e *PriorityEngine) Breakdown(t task.Task, tasks []task.Task) ScoreBreakdown {
	p := e.newPass(tasks)
	return p.breakdown(&t, make(map[int64]struct{}))
}

// ScoreAll scores every task in input order.
func (e *PriorityEngine) ScoreAll(tasks []task.Task) []ScoredTask {
	p := e.newPass(tasks)
	scored := make([]ScoredTask, len(tasks))
	for i := range tasks {
		b := p.breakdown(&tasks[i], make(map[int64]struct{}))
		scored[i] = ScoredTask{Task: tasks[i], Score: b.Total, Breakdown: b}
	}
	return scored
}

// TopPriorityTask returns the incomplete task with the highest score. The
// earliest task in input order wins ties.
func (e *PriorityEngine) TopPriorityTask(tasks []task.Task) (*ScoredTask, bool) {
	return TopScored(e.ScoreAll(tasks))
}

// TopScored picks the incomplete entry with the highest score from an
// already scored batch. The earliest entry wins ties.
func TopScored(scored []ScoredTask) (*ScoredTask, bool) {
	var top *ScoredTask
	for _, st := range scored {
		if st.Task.Done {
			continue
		}
		if top == nil || st.Score > top.Score {
			top = &st
		}
	}
	return top, top != nil
}

// Rank scores and sorts the snapshot.
func (e *PriorityEngine) Rank(tasks []task.Task) []ScoredTask {
	return SortByScore(e.ScoreAll(tasks))
}

// SortByScore returns a sorted copy: incomplete tasks first, then by
// descending score, then by ascending id.
func SortByScore(scored []ScoredTask) []ScoredTask {
	sorted := make([]ScoredTask, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Task.Done != b.Task.Done {
			return !a.Task.Done
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Task.ID < b.Task.ID
	})
	return sorted
}

// scoringPass binds one snapshot to one instant.
type scoringPass struct {
	engine *PriorityEngine
	snap   snapshot
	now    time.Time
}

func (e *PriorityEngine) newPass(tasks []task.Task) *scoringPass {
	return &scoringPass{engine: e, snap: newSnapshot(tasks), now: e.now()}
}

// breakdown is the only scoring routine. visited is shared by the whole walk
// started from one top-level task, so no node is entered twice. A dependent
// reached earlier through a sibling contributes 0, so the result follows
// relation order.
func (p *scoringPass) breakdown(t *task.Task, visited map[int64]struct{}) ScoreBreakdown {
	b := ScoreBreakdown{TaskID: t.ID, Priority: t.Priority, Completed: t.Done}
	if t.Done {
		return b
	}
	if _, seen := visited[t.ID]; seen {
		return b
	}
	visited[t.ID] = struct{}{}

	e := p.engine
	b.PriorityScore = e.PriorityWeight(t.Priority)
	b.DueDateScore, b.HasDueDate = e.DueDateScore(t.DueDate, p.now)
	b.StartDateScore = e.StartDateScore(t.StartDate, p.now)
	b.AgeScore = e.AgeScore(t.Updated, p.now)

	b.BlockerCount = countIncomplete(p.snap.resolve(t.ID, t.BlockedByIDs()))
	b.IsBlocked = b.BlockerCount > 0

	var dependents []*task.Task
	for _, d := range p.snap.resolve(t.ID, t.BlockingIDs()) {
		if !d.Done {
			dependents = append(dependents, d)
		}
	}
	b.DependentCount = len(dependents)
	if len(dependents) > 0 {
		bonus := e.config.BlockingBonus
		for _, d := range dependents {
			child := p.breakdown(d, visited)
			bonus += e.config.InheritRatio * math.Max(0, child.Total)
		}
		b.BlockingBonus = bonus
	}

	b.Subtotal = b.Base() + b.BlockingBonus
	b.Total = b.Subtotal
	if b.IsBlocked {
		b.Total = e.blockedPenalty(b.Subtotal)
	}
	return b
}

// blockedPenalty dampens a positive total toward the floor without crossing
// it. Non-positive totals are returned unchanged.
func (e *PriorityEngine) blockedPenalty(total float64) float64 {
	if total <= 0 {
		return total
	}
	floor := math.Min(total, e.config.BlockedFloor)
	return math.Max(total*e.config.BlockedMultiplier, floor)
}

// snapshot indexes tasks by id. The first task wins on duplicate ids.
type snapshot map[int64]*task.Task

func newSnapshot(tasks []task.Task) snapshot {
	s := make(snapshot, len(tasks))
	for i := range tasks {
		if _, ok := s[tasks[i].ID]; !ok {
			s[tasks[i].ID] = &tasks[i]
		}
	}
	return s
}

// resolve maps ids to tasks, skipping unknown ids, repeated ids and self.
// A task naming itself as a blocker is therefore not blocked.
func (s snapshot) resolve(self int64, ids []int64) []*task.Task {
	var out []*task.Task
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id == self {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if t, ok := s[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

func countIncomplete(tasks []*task.Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Done {
			n++
		}
	}
	return n
}

func derefAll(tasks []*task.Task) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *t)
	}
	return out
}
