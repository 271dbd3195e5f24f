package mcp

import (
	"errors"
	"strings"
	"time"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

func parseOptionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	return task.ParseDate(value)
}

func requireTaskID(id int64) error {
	if id <= 0 {
		return errors.New("task_id is required")
	}
	return nil
}
