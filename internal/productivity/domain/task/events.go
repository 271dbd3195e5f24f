package task

import (
	"strconv"

	"github.com/maccam912/vikunja-ai/internal/shared/domain"
)

const (
	AggregateType = "Task"

	RoutingKeyCreated         = "task.created"
	RoutingKeyUpdated         = "task.updated"
	RoutingKeyCompleted       = "task.completed"
	RoutingKeyDeleted         = "task.deleted"
	RoutingKeyRelationAdded   = "task.relation_added"
	RoutingKeyRelationRemoved = "task.relation_removed"
	RoutingKeyRecalculated    = "priorities.recalculated"
)

func aggregateID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// TaskCreated is emitted when a new task is created.
type TaskCreated struct {
	domain.BaseEvent
	TaskID    int64  `json:"task_id"`
	ProjectID int64  `json:"project_id"`
	Title     string `json:"title"`
	Priority  string `json:"priority"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(t *Task) *TaskCreated {
	return &TaskCreated{
		BaseEvent: domain.NewBaseEvent(aggregateID(t.ID), AggregateType, RoutingKeyCreated),
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		Title:     t.Title,
		Priority:  t.Priority.String(),
	}
}

// TaskUpdated is emitted when a task is updated.
type TaskUpdated struct {
	domain.BaseEvent
	TaskID int64    `json:"task_id"`
	Fields []string `json:"fields"`
}

// NewTaskUpdated creates a TaskUpdated event.
func NewTaskUpdated(taskID int64, fields []string) *TaskUpdated {
	return &TaskUpdated{
		BaseEvent: domain.NewBaseEvent(aggregateID(taskID), AggregateType, RoutingKeyUpdated),
		TaskID:    taskID,
		Fields:    fields,
	}
}

// TaskCompleted is emitted when a task is marked done.
type TaskCompleted struct {
	domain.BaseEvent
	TaskID int64 `json:"task_id"`
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(taskID int64) *TaskCompleted {
	return &TaskCompleted{
		BaseEvent: domain.NewBaseEvent(aggregateID(taskID), AggregateType, RoutingKeyCompleted),
		TaskID:    taskID,
	}
}

// TaskDeleted is emitted when a task is removed.
type TaskDeleted struct {
	domain.BaseEvent
	TaskID int64 `json:"task_id"`
}

// NewTaskDeleted creates a TaskDeleted event.
func NewTaskDeleted(taskID int64) *TaskDeleted {
	return &TaskDeleted{
		BaseEvent: domain.NewBaseEvent(aggregateID(taskID), AggregateType, RoutingKeyDeleted),
		TaskID:    taskID,
	}
}

// RelationChanged is emitted when an edge is added or removed.
type RelationChanged struct {
	domain.BaseEvent
	TaskID      int64        `json:"task_id"`
	OtherTaskID int64        `json:"other_task_id"`
	Kind        RelationKind `json:"kind"`
}

// NewRelationChanged creates a RelationChanged event for an added or removed edge.
func NewRelationChanged(taskID, otherID int64, kind RelationKind, removed bool) *RelationChanged {
	key := RoutingKeyRelationAdded
	if removed {
		key = RoutingKeyRelationRemoved
	}
	return &RelationChanged{
		BaseEvent:   domain.NewBaseEvent(aggregateID(taskID), AggregateType, key),
		TaskID:      taskID,
		OtherTaskID: otherID,
		Kind:        kind,
	}
}

// PrioritiesRecalculated is emitted after a full scoring pass is stored.
type PrioritiesRecalculated struct {
	domain.BaseEvent
	TaskCount    int     `json:"task_count"`
	BlockedCount int     `json:"blocked_count"`
	TopTaskID    int64   `json:"top_task_id,omitempty"`
	TopScore     float64 `json:"top_score,omitempty"`
}

// NewPrioritiesRecalculated creates a PrioritiesRecalculated event.
func NewPrioritiesRecalculated(taskCount, blockedCount int, topTaskID int64, topScore float64) *PrioritiesRecalculated {
	return &PrioritiesRecalculated{
		BaseEvent:    domain.NewBaseEvent("snapshot", "PriorityScore", RoutingKeyRecalculated),
		TaskCount:    taskCount,
		BlockedCount: blockedCount,
		TopTaskID:    topTaskID,
		TopScore:     topScore,
	}
}
