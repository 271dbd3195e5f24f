package value_objects

import (
	"errors"
	"strconv"
	"strings"
)

// Priority is the declared urgency of a task, mirroring Vikunja's 0..5 scale.
type Priority int

const (
	PriorityUnset Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityUrgent
	PriorityDoNow
)

var (
	ErrInvalidPriority = errors.New("invalid priority value")
)

var priorityNames = map[Priority]string{
	PriorityUnset:  "unset",
	PriorityLow:    "low",
	PriorityMedium: "medium",
	PriorityHigh:   "high",
	PriorityUrgent: "urgent",
	PriorityDoNow:  "do_now",
}

var priorityValues = map[string]Priority{
	"unset":  PriorityUnset,
	"none":   PriorityUnset,
	"low":    PriorityLow,
	"medium": PriorityMedium,
	"high":   PriorityHigh,
	"urgent": PriorityUrgent,
	"do_now": PriorityDoNow,
}

// NewPriority converts a raw ordinal into a Priority.
func NewPriority(n int) (Priority, error) {
	p := Priority(n)
	if !p.IsValid() {
		return PriorityUnset, ErrInvalidPriority
	}
	return p, nil
}

// ParsePriority accepts a level name ("do now", "do-now" and "do_now" are
// equivalent) or its ordinal as a string.
func ParsePriority(s string) (Priority, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if p, ok := priorityValues[key]; ok {
		return p, nil
	}
	if n, err := strconv.Atoi(key); err == nil {
		return NewPriority(n)
	}
	return PriorityUnset, ErrInvalidPriority
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true if the priority is a valid value.
func (p Priority) IsValid() bool {
	_, ok := priorityNames[p]
	return ok
}

// Int returns the ordinal as sent to Vikunja.
func (p Priority) Int() int {
	return int(p)
}
