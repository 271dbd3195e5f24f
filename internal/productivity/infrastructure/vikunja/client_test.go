package vikunja

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

const testToken = "tk_test"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, Token: testToken}, nil)
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{Token: "x"}, nil)
	assert.ErrorIs(t, err, ErrMissingBaseURL)

	_, err = NewClient(Config{BaseURL: "http://localhost"}, nil)
	assert.ErrorIs(t, err, ErrMissingToken)

	c, err := NewClient(Config{BaseURL: "http://localhost/api/v1/", Token: "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/api/v1", c.baseURL)
}

func TestClient_ListTasks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/tasks/all", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))
		assert.Equal(t, "done = false && project = 3", r.URL.Query().Get("filter"))

		w.Header().Set(totalPagesHeader, "4")
		writeJSON(w, http.StatusOK, []APITask{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}})
	})

	tasks, pages, err := client.ListTasks(context.Background(), 2, 10, task.ListFilter{ProjectID: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, pages)
	require.Len(t, tasks, 2)
	assert.Equal(t, "b", tasks[1].Title)
}

func TestFilterExpression(t *testing.T) {
	assert.Equal(t, "done = false", filterExpression(task.ListFilter{}))
	assert.Equal(t, "", filterExpression(task.ListFilter{IncludeDone: true}))
	assert.Equal(t, "project = 9", filterExpression(task.ListFilter{IncludeDone: true, ProjectID: 9}))
}

func TestClient_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: 4002, Message: "The task does not exist."})
	})

	_, err := client.GetTask(context.Background(), 99)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, 4002, apiErr.Code)
	assert.Equal(t, "The task does not exist.", apiErr.Message)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestClient_PlainTextError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	err := client.DeleteTask(context.Background(), 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "bad gateway", apiErr.Message)
	assert.NotErrorIs(t, err, task.ErrTaskNotFound)
}

func TestClient_UpdateTaskPreservesUnknownFields(t *testing.T) {
	var posted map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tasks/7", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{
				"id": 7, "title": "old", "percent_done": 0.5, "hex_color": "ff0000",
			})
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(body, &posted))
			writeJSON(w, http.StatusOK, posted)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	updated, err := client.UpdateTask(context.Background(), 7, map[string]any{"title": "new", "done": true})
	require.NoError(t, err)

	assert.Equal(t, "new", updated.Title)
	assert.True(t, updated.Done)
	assert.Equal(t, 0.5, posted["percent_done"])
	assert.Equal(t, "ff0000", posted["hex_color"])
}

func TestClient_Relations(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			var body relationRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, relationRequest{OtherTaskID: 2, RelationKind: "blocking"}, body)
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	ctx := context.Background()
	require.NoError(t, client.CreateRelation(ctx, 1, task.RelationBlocking, 2))
	require.NoError(t, client.DeleteRelation(ctx, 1, task.RelationBlocking, 2))

	assert.Equal(t, []string{
		"PUT /api/v1/tasks/1/relations",
		"DELETE /api/v1/tasks/1/relations/blocking/2",
	}, paths)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx := context.Background()
	for range breakerFailures {
		_, err := client.GetTask(ctx, 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrServiceUnavailable)
	}

	_, err := client.GetTask(ctx, 1)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, int32(breakerFailures), calls.Load())
}

func TestClient_BreakerIgnoresClientErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Message: "nope"})
	})

	for range breakerFailures + 2 {
		_, err := client.GetTask(context.Background(), 1)
		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	}
}
