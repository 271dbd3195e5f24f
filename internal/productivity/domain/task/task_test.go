package task_test

import (
	"testing"
	"time"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDraft(t *testing.T) {
	t.Run("trims title", func(t *testing.T) {
		d, err := task.NewDraft(3, "  write report ")
		require.NoError(t, err)
		assert.Equal(t, "write report", d.Title)
		assert.Equal(t, int64(3), d.ProjectID)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := task.NewDraft(3, "   ")
		assert.ErrorIs(t, err, task.ErrEmptyTitle)
	})

	t.Run("rejects missing project", func(t *testing.T) {
		_, err := task.NewDraft(0, "x")
		assert.ErrorIs(t, err, task.ErrInvalidProject)
	})
}

func TestTask_RelationQueries(t *testing.T) {
	tk := task.Task{
		ID: 1,
		Relations: []task.Relation{
			{Kind: task.RelationBlocked, TaskID: 2},
			{Kind: task.RelationBlocking, TaskID: 3},
			{Kind: task.RelationRelated, TaskID: 4},
			{Kind: task.RelationBlocking, TaskID: 5},
		},
	}

	assert.Equal(t, []int64{2}, tk.BlockedByIDs())
	assert.Equal(t, []int64{3, 5}, tk.BlockingIDs())
	assert.True(t, tk.HasRelation(task.RelationRelated, 4))
	assert.False(t, tk.HasRelation(task.RelationBlocked, 4))

	var empty task.Task
	assert.Empty(t, empty.BlockedByIDs())
	assert.Empty(t, empty.BlockingIDs())
}

func TestTask_Complete(t *testing.T) {
	tk := task.Task{ID: 1}
	require.NoError(t, tk.Complete())
	assert.True(t, tk.Done)
	assert.ErrorIs(t, tk.Complete(), task.ErrTaskAlreadyComplete)
}

func TestParseRelationKind(t *testing.T) {
	kind, err := task.ParseRelationKind(" Blocking ")
	require.NoError(t, err)
	assert.Equal(t, task.RelationBlocking, kind)
	assert.Equal(t, task.RelationBlocked, kind.Inverse())
	assert.Equal(t, task.RelationRelated, task.RelationRelated.Inverse())

	_, err = task.ParseRelationKind("depends_on")
	assert.ErrorIs(t, err, task.ErrInvalidRelationKind)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{"empty", "", nil},
		{"garbage", "next tuesday", nil},
		{"zero sentinel", "0001-01-01T00:00:00Z", nil},
		{"rfc3339", "2024-05-01T10:00:00Z", ptr(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))},
		{"offset normalized to utc", "2024-05-01T12:00:00+02:00", ptr(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))},
		{"date only", "2024-05-01", ptr(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := task.ParseTimestamp(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "0001-01-01T00:00:00Z", task.FormatTimestamp(nil))
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-01T10:00:00Z", task.FormatTimestamp(&ts))
	assert.Nil(t, task.ParseTimestamp(task.FormatTimestamp(nil)))
}

func TestParseDate(t *testing.T) {
	got, err := task.ParseDate(" 2026-03-04 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), *got)

	got, err = task.ParseDate("2026-03-04T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 8, 30, 0, 0, time.UTC), *got)

	_, err = task.ParseDate("next tuesday")
	assert.ErrorIs(t, err, task.ErrInvalidDate)
	_, err = task.ParseDate("")
	assert.ErrorIs(t, err, task.ErrInvalidDate)
}

func TestEvents(t *testing.T) {
	tk := &task.Task{ID: 12, ProjectID: 2, Title: "a"}
	created := task.NewTaskCreated(tk)
	assert.Equal(t, "12", created.AggregateID())
	assert.Equal(t, task.RoutingKeyCreated, created.RoutingKey())

	removed := task.NewRelationChanged(1, 2, task.RelationBlocking, true)
	assert.Equal(t, task.RoutingKeyRelationRemoved, removed.RoutingKey())
	added := task.NewRelationChanged(1, 2, task.RelationBlocking, false)
	assert.Equal(t, task.RoutingKeyRelationAdded, added.RoutingKey())
}

func ptr(t time.Time) *time.Time { return &t }
