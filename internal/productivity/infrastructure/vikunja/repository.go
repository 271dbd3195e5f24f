package vikunja

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/value_objects"
)

const (
	defaultPerPage = 50
	maxPages       = 200
)

// Repository implements task.Repository over Client.
type Repository struct {
	client  *Client
	perPage int
}

// NewRepository wraps client. perPage <= 0 uses the default page size.
func NewRepository(client *Client, perPage int) *Repository {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	return &Repository{client: client, perPage: perPage}
}

// Projects lists the projects visible to the token.
func (r *Repository) Projects(ctx context.Context) ([]Project, error) {
	return r.client.ListProjects(ctx)
}

// List fetches every page of the filtered snapshot.
func (r *Repository) List(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	var tasks []task.Task
	for page := 1; page <= maxPages; page++ {
		batch, totalPages, err := r.client.ListTasks(ctx, page, r.perPage, filter)
		if err != nil {
			return nil, err
		}
		for _, t := range batch {
			tasks = append(tasks, toDomain(t))
		}
		if len(batch) == 0 || page >= totalPages {
			break
		}
	}
	return tasks, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*task.Task, error) {
	remote, err := r.client.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	t := toDomain(*remote)
	return &t, nil
}

func (r *Repository) Create(ctx context.Context, draft task.Draft) (*task.Task, error) {
	created, err := r.client.CreateTask(ctx, draft.ProjectID, APITask{
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority.Int(),
		DueDate:     task.FormatTimestamp(draft.DueDate),
		StartDate:   task.FormatTimestamp(draft.StartDate),
		ProjectID:   draft.ProjectID,
	})
	if err != nil {
		return nil, err
	}
	t := toDomain(*created)
	return &t, nil
}

func (r *Repository) Update(ctx context.Context, t *task.Task) (*task.Task, error) {
	updated, err := r.client.UpdateTask(ctx, t.ID, map[string]any{
		"title":       t.Title,
		"description": t.Description,
		"priority":    t.Priority.Int(),
		"done":        t.Done,
		"due_date":    task.FormatTimestamp(t.DueDate),
		"start_date":  task.FormatTimestamp(t.StartDate),
	})
	if err != nil {
		return nil, err
	}
	result := toDomain(*updated)
	return &result, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.client.DeleteTask(ctx, id)
}

// AddRelation treats an already existing edge as success.
func (r *Repository) AddRelation(ctx context.Context, id int64, kind task.RelationKind, otherID int64) error {
	err := r.client.CreateRelation(ctx, id, kind, otherID)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		return nil
	}
	return err
}

func (r *Repository) RemoveRelation(ctx context.Context, id int64, kind task.RelationKind, otherID int64) error {
	return r.client.DeleteRelation(ctx, id, kind, otherID)
}

// toDomain normalizes a wire task. Out-of-range priorities become unset and
// relations are ordered by kind, then by id.
func toDomain(remote APITask) task.Task {
	priority, err := value_objects.NewPriority(remote.Priority)
	if err != nil {
		priority = value_objects.PriorityUnset
	}

	t := task.Task{
		ID:          remote.ID,
		Title:       remote.Title,
		Description: remote.Description,
		ProjectID:   remote.ProjectID,
		Priority:    priority,
		Done:        remote.Done,
		DueDate:     task.ParseTimestamp(remote.DueDate),
		StartDate:   task.ParseTimestamp(remote.StartDate),
		Updated:     task.ParseTimestamp(remote.Updated),
	}

	kinds := make([]string, 0, len(remote.RelatedTasks))
	for kind := range remote.RelatedTasks {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	for _, name := range kinds {
		kind, err := task.ParseRelationKind(name)
		if err != nil {
			continue
		}
		related := remote.RelatedTasks[name]
		ids := make([]int64, 0, len(related))
		for _, other := range related {
			ids = append(ids, other.ID)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			t.Relations = append(t.Relations, task.Relation{Kind: kind, TaskID: id})
		}
	}
	return t
}
