package task

import (
	"errors"
	"strings"
)

// RelationKind names a directed edge between two tasks.
type RelationKind string

const (
	RelationSubtask     RelationKind = "subtask"
	RelationParentTask  RelationKind = "parenttask"
	RelationRelated     RelationKind = "related"
	RelationDuplicateOf RelationKind = "duplicateof"
	RelationDuplicates  RelationKind = "duplicates"
	RelationBlocking    RelationKind = "blocking"
	RelationBlocked     RelationKind = "blocked"
	RelationPrecedes    RelationKind = "precedes"
	RelationFollows     RelationKind = "follows"
	RelationCopiedFrom  RelationKind = "copiedfrom"
	RelationCopiedTo    RelationKind = "copiedto"
)

var ErrInvalidRelationKind = errors.New("invalid relation kind")

var relationKinds = map[RelationKind]struct{}{
	RelationSubtask:     {},
	RelationParentTask:  {},
	RelationRelated:     {},
	RelationDuplicateOf: {},
	RelationDuplicates:  {},
	RelationBlocking:    {},
	RelationBlocked:     {},
	RelationPrecedes:    {},
	RelationFollows:     {},
	RelationCopiedFrom:  {},
	RelationCopiedTo:    {},
}

// Relation is an edge from the owning task to TaskID.
type Relation struct {
	Kind   RelationKind `json:"kind"`
	TaskID int64        `json:"task_id"`
}

// ParseRelationKind validates a kind name.
func ParseRelationKind(s string) (RelationKind, error) {
	kind := RelationKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := relationKinds[kind]; !ok {
		return "", ErrInvalidRelationKind
	}
	return kind, nil
}

// Inverse returns the kind stored on the other side of the edge.
// Kinds without a counterpart map to themselves.
func (k RelationKind) Inverse() RelationKind {
	switch k {
	case RelationBlocking:
		return RelationBlocked
	case RelationBlocked:
		return RelationBlocking
	case RelationSubtask:
		return RelationParentTask
	case RelationParentTask:
		return RelationSubtask
	case RelationDuplicateOf:
		return RelationDuplicates
	case RelationDuplicates:
		return RelationDuplicateOf
	case RelationPrecedes:
		return RelationFollows
	case RelationFollows:
		return RelationPrecedes
	case RelationCopiedFrom:
		return RelationCopiedTo
	case RelationCopiedTo:
		return RelationCopiedFrom
	default:
		return k
	}
}
