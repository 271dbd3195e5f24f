package task

import (
	"errors"
	"strings"
	"time"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/value_objects"
)

var (
	ErrEmptyTitle          = errors.New("task title cannot be empty")
	ErrTaskAlreadyComplete = errors.New("task is already completed")
	ErrTaskNotFound        = errors.New("task not found")
	ErrSelfRelation        = errors.New("task cannot be related to itself")
	ErrInvalidProject      = errors.New("project id must be positive")
)

// Task is a read-only snapshot of a remote task as seen by one scoring pass.
// Dates are either nil or a valid instant; sentinel values are normalized
// away before a Task is constructed.
type Task struct {
	ID          int64
	Title       string
	Description string
	ProjectID   int64
	Priority    value_objects.Priority
	Done        bool
	DueDate     *time.Time
	StartDate   *time.Time
	Updated     *time.Time
	Relations   []Relation
}

// BlockedByIDs returns the ids this task declares itself blocked by.
func (t *Task) BlockedByIDs() []int64 {
	return t.relatedIDs(RelationBlocked)
}

// BlockingIDs returns the ids this task declares itself blocking.
func (t *Task) BlockingIDs() []int64 {
	return t.relatedIDs(RelationBlocking)
}

// HasRelation reports whether the task carries the given edge.
func (t *Task) HasRelation(kind RelationKind, otherID int64) bool {
	for _, r := range t.Relations {
		if r.Kind == kind && r.TaskID == otherID {
			return true
		}
	}
	return false
}

func (t *Task) relatedIDs(kind RelationKind) []int64 {
	var ids []int64
	for _, r := range t.Relations {
		if r.Kind == kind {
			ids = append(ids, r.TaskID)
		}
	}
	return ids
}

// Complete marks the snapshot done.
func (t *Task) Complete() error {
	if t.Done {
		return ErrTaskAlreadyComplete
	}
	t.Done = true
	return nil
}

// Draft describes a task that does not exist remotely yet.
type Draft struct {
	ProjectID   int64
	Title       string
	Description string
	Priority    value_objects.Priority
	DueDate     *time.Time
	StartDate   *time.Time
}

// NewDraft validates the fields required to create a task.
func NewDraft(projectID int64, title string) (Draft, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Draft{}, ErrEmptyTitle
	}
	if projectID <= 0 {
		return Draft{}, ErrInvalidProject
	}
	return Draft{ProjectID: projectID, Title: title}, nil
}

// ListFilter narrows the snapshot fetched from the repository.
type ListFilter struct {
	IncludeDone bool
	ProjectID   int64
}
