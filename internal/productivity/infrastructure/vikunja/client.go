// Package vikunja talks to the Vikunja REST API and adapts it to the task
// repository.
package vikunja

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

const (
	apiPrefix          = "/api/v1"
	totalPagesHeader   = "x-pagination-total-pages"
	defaultTimeout     = 15 * time.Second
	breakerFailures    = 5
	breakerOpenTimeout = 30 * time.Second
)

var (
	// ErrServiceUnavailable is returned while the circuit breaker is open.
	ErrServiceUnavailable = errors.New("vikunja unavailable")
	ErrMissingBaseURL     = errors.New("vikunja base URL is required")
	ErrMissingToken       = errors.New("vikunja API token is required")
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("vikunja: status %d", e.StatusCode)
	}
	return fmt.Sprintf("vikunja: status %d: %s", e.StatusCode, e.Message)
}

// Is lets a 404 match task.ErrTaskNotFound.
func (e *APIError) Is(target error) bool {
	return target == task.ErrTaskNotFound && e.StatusCode == http.StatusNotFound
}

// APITask is the wire form of a task. Dates stay strings so sentinel and
// malformed values can be normalized by task.ParseTimestamp.
type APITask struct {
	ID           int64                `json:"id,omitempty"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Done         bool                 `json:"done"`
	Priority     int                  `json:"priority"`
	DueDate      string               `json:"due_date,omitempty"`
	StartDate    string               `json:"start_date,omitempty"`
	Created      string               `json:"created,omitempty"`
	Updated      string               `json:"updated,omitempty"`
	ProjectID    int64                `json:"project_id,omitempty"`
	RelatedTasks map[string][]APITask `json:"related_tasks,omitempty"`
}

// Project is the subset of a Vikunja project the assistant shows.
type Project struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsArchived  bool   `json:"is_archived"`
}

type relationRequest struct {
	OtherTaskID  int64  `json:"other_task_id"`
	RelationKind string `json:"relation_kind"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Transport overrides http.DefaultTransport underneath the token transport.
	Transport http.RoundTripper
}

// Client is a thin JSON client for Vikunja API v1.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
}

// NewClient builds a client that authenticates with a static bearer token.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	c := &Client{
		baseURL: strings.TrimSuffix(strings.TrimSuffix(cfg.BaseURL, "/"), apiPrefix) + apiPrefix,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}),
				Base:   base,
			},
		},
		logger: logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "vikunja",
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return c, nil
}

// isBreakerSuccess counts client errors and cancellations as healthy
// responses; only transport failures and 5xx trip the breaker.
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

// ListTasks fetches one page of tasks across all projects.
func (c *Client) ListTasks(ctx context.Context, page, perPage int, filter task.ListFilter) ([]APITask, int, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	if expr := filterExpression(filter); expr != "" {
		query.Set("filter", expr)
	}

	var tasks []APITask
	header, err := c.do(ctx, http.MethodGet, "/tasks/all", query, nil, &tasks)
	if err != nil {
		return nil, 0, err
	}
	totalPages, err := strconv.Atoi(header.Get(totalPagesHeader))
	if err != nil {
		totalPages = page
	}
	return tasks, totalPages, nil
}

func filterExpression(filter task.ListFilter) string {
	var parts []string
	if !filter.IncludeDone {
		parts = append(parts, "done = false")
	}
	if filter.ProjectID > 0 {
		parts = append(parts, "project = "+strconv.FormatInt(filter.ProjectID, 10))
	}
	return strings.Join(parts, " && ")
}

// GetTask fetches one task with its relations.
func (c *Client) GetTask(ctx context.Context, id int64) (*APITask, error) {
	var t APITask
	if _, err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask creates t in project projectID.
func (c *Client) CreateTask(ctx context.Context, projectID int64, t APITask) (*APITask, error) {
	var created APITask
	path := "/projects/" + strconv.FormatInt(projectID, 10) + "/tasks"
	if _, err := c.do(ctx, http.MethodPut, path, nil, t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTask applies changes on top of the current remote task and posts the
// full object back. Fields this client does not model are preserved.
func (c *Client) UpdateTask(ctx context.Context, id int64, changes map[string]any) (*APITask, error) {
	var current map[string]json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &current); err != nil {
		return nil, err
	}
	if current == nil {
		current = map[string]json.RawMessage{}
	}
	for key, value := range changes {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		current[key] = raw
	}

	var updated APITask
	if _, err := c.do(ctx, http.MethodPost, taskPath(id), nil, current, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil)
	return err
}

// CreateRelation adds an edge of kind from id to otherID. Vikunja stores the
// inverse edge on the other task itself.
func (c *Client) CreateRelation(ctx context.Context, id int64, kind task.RelationKind, otherID int64) error {
	body := relationRequest{OtherTaskID: otherID, RelationKind: string(kind)}
	_, err := c.do(ctx, http.MethodPut, taskPath(id)+"/relations", nil, body, nil)
	return err
}

// DeleteRelation removes an edge and its inverse.
func (c *Client) DeleteRelation(ctx context.Context, id int64, kind task.RelationKind, otherID int64) error {
	path := taskPath(id) + "/relations/" + string(kind) + "/" + strconv.FormatInt(otherID, 10)
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}

// ListProjects returns the projects visible to the token.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if _, err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Ping checks that the API answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/info", nil, nil, nil)
	return err
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (http.Header, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.roundTrip(ctx, method, path, query, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	header, _ := result.(http.Header)
	return header, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) (http.Header, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.DebugContext(ctx, "vikunja request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.Header, nil
}

func responseError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
