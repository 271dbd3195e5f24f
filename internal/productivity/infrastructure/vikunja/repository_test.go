package vikunja

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/value_objects"
)

func TestToDomain(t *testing.T) {
	remote := APITask{
		ID:        5,
		Title:     "Ship release",
		Priority:  4,
		DueDate:   "2026-03-01T12:00:00Z",
		StartDate: "0001-01-01T00:00:00Z",
		Updated:   "not a date",
		ProjectID: 2,
		RelatedTasks: map[string][]APITask{
			"blocking": {{ID: 9}, {ID: 3}},
			"blocked":  {{ID: 7}},
			"unknown":  {{ID: 1}},
		},
	}

	got := toDomain(remote)

	assert.Equal(t, int64(5), got.ID)
	assert.Equal(t, value_objects.PriorityUrgent, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Nil(t, got.StartDate)
	assert.Nil(t, got.Updated)
	assert.Equal(t, []task.Relation{
		{Kind: task.RelationBlocked, TaskID: 7},
		{Kind: task.RelationBlocking, TaskID: 3},
		{Kind: task.RelationBlocking, TaskID: 9},
	}, got.Relations)
}

func TestToDomain_InvalidPriority(t *testing.T) {
	assert.Equal(t, value_objects.PriorityUnset, toDomain(APITask{Priority: 42}).Priority)
	assert.Equal(t, value_objects.PriorityUnset, toDomain(APITask{Priority: -1}).Priority)
}

func TestRepository_ListPaginates(t *testing.T) {
	var pages []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		n, _ := strconv.Atoi(page)
		w.Header().Set(totalPagesHeader, "3")
		writeJSON(w, http.StatusOK, []APITask{{ID: int64(n*10 + 1)}, {ID: int64(n*10 + 2)}})
	})

	repo := NewRepository(client, 2)
	tasks, err := repo.List(context.Background(), task.ListFilter{})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, pages)
	require.Len(t, tasks, 6)
	assert.Equal(t, int64(32), tasks[5].ID)
}

func TestRepository_ListStopsOnEmptyPage(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusOK, []APITask{})
	})

	tasks, err := NewRepository(client, 0).List(context.Background(), task.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, 1, calls)
}

func TestRepository_Create(t *testing.T) {
	due := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/projects/4/tasks", r.URL.Path)

		var body APITask
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Write docs", body.Title)
		assert.Equal(t, 3, body.Priority)
		assert.Equal(t, "2026-05-01T09:00:00Z", body.DueDate)
		assert.Equal(t, "0001-01-01T00:00:00Z", body.StartDate)

		body.ID = 77
		writeJSON(w, http.StatusCreated, body)
	})

	draft, err := task.NewDraft(4, "Write docs")
	require.NoError(t, err)
	draft.Priority = value_objects.PriorityHigh
	draft.DueDate = &due

	created, err := NewRepository(client, 0).Create(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, int64(77), created.ID)
	assert.Nil(t, created.StartDate)
}

func TestRepository_AddRelationConflictIsSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, errorBody{Code: 4007, Message: "The task relation already exists."})
	})

	err := NewRepository(client, 0).AddRelation(context.Background(), 1, task.RelationBlocked, 2)
	assert.NoError(t, err)
}

func TestRepository_GetNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Message: "missing"})
	})

	_, err := NewRepository(client, 0).Get(context.Background(), 1)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}
