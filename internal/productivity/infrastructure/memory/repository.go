// Package memory provides a process-local task.Repository. It mirrors the
// remote semantics the rest of the code relies on: new tasks get increasing
// ids and every relation is stored on both ends.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

// Repository is a concurrency-safe in-memory task store.
type Repository struct {
	mu     sync.RWMutex
	tasks  map[int64]*task.Task
	nextID int64
	now    func() time.Time
}

// NewRepository seeds a repository with copies of tasks.
func NewRepository(tasks ...task.Task) *Repository {
	r := &Repository{tasks: make(map[int64]*task.Task), now: time.Now}
	for _, t := range tasks {
		c := clone(t)
		r.tasks[c.ID] = &c
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

func (r *Repository) List(_ context.Context, filter task.ListFilter) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]task.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if t.Done && !filter.IncludeDone {
			continue
		}
		if filter.ProjectID > 0 && t.ProjectID != filter.ProjectID {
			continue
		}
		out = append(out, clone(*t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repository) Get(_ context.Context, id int64) (*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	c := clone(*t)
	return &c, nil
}

func (r *Repository) Create(_ context.Context, draft task.Draft) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	updated := r.now()
	t := &task.Task{
		ID:          r.nextID,
		Title:       draft.Title,
		Description: draft.Description,
		ProjectID:   draft.ProjectID,
		Priority:    draft.Priority,
		DueDate:     draft.DueDate,
		StartDate:   draft.StartDate,
		Updated:     &updated,
	}
	r.tasks[t.ID] = t
	c := clone(*t)
	return &c, nil
}

func (r *Repository) Update(_ context.Context, t *task.Task) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[t.ID]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	updated := r.now()
	next := clone(*t)
	next.Relations = existing.Relations
	next.Updated = &updated
	r.tasks[t.ID] = &next
	c := clone(next)
	return &c, nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return task.ErrTaskNotFound
	}
	delete(r.tasks, id)
	for _, t := range r.tasks {
		t.Relations = without(t.Relations, func(rel task.Relation) bool { return rel.TaskID == id })
	}
	return nil
}

func (r *Repository) AddRelation(_ context.Context, id int64, kind task.RelationKind, otherID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, ok := r.tasks[id]
	if !ok {
		return task.ErrTaskNotFound
	}
	to, ok := r.tasks[otherID]
	if !ok {
		return task.ErrTaskNotFound
	}
	if !from.HasRelation(kind, otherID) {
		from.Relations = append(from.Relations, task.Relation{Kind: kind, TaskID: otherID})
	}
	if inverse := kind.Inverse(); !to.HasRelation(inverse, id) {
		to.Relations = append(to.Relations, task.Relation{Kind: inverse, TaskID: id})
	}
	return nil
}

func (r *Repository) RemoveRelation(_ context.Context, id int64, kind task.RelationKind, otherID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, ok := r.tasks[id]
	if !ok {
		return task.ErrTaskNotFound
	}
	from.Relations = without(from.Relations, func(rel task.Relation) bool {
		return rel.Kind == kind && rel.TaskID == otherID
	})
	if to, ok := r.tasks[otherID]; ok {
		inverse := kind.Inverse()
		to.Relations = without(to.Relations, func(rel task.Relation) bool {
			return rel.Kind == inverse && rel.TaskID == id
		})
	}
	return nil
}

func without(relations []task.Relation, drop func(task.Relation) bool) []task.Relation {
	out := relations[:0:0]
	for _, rel := range relations {
		if !drop(rel) {
			out = append(out, rel)
		}
	}
	return out
}

func clone(t task.Task) task.Task {
	if t.Relations != nil {
		t.Relations = append([]task.Relation(nil), t.Relations...)
	}
	return t
}
