// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/taskboard-dev/taskboard/lib/netutil"
	"github.com/taskboard-dev/taskboard/lib/ref"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// ServerURL is the base URL of the board backend (e.g., "http://localhost:5000").
	ServerURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client is the REST client for the board backend's resource API and
// the classifier. It is stateless and safe for concurrent use; one
// Client is shared by all sessions against the same backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new board API client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ServerURL == "" {
		return nil, fmt.Errorf("board: ServerURL is required")
	}

	// Validate the URL structure. We store the string form (with
	// trailing slash stripped) and build request URLs by direct
	// concatenation, which avoids double-encoding issues with Go's
	// url.URL.String().
	if _, err := url.Parse(config.ServerURL); err != nil {
		return nil, fmt.Errorf("board: invalid ServerURL %q: %w", config.ServerURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.ServerURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the backend base URL with any trailing slash
// stripped. The push channel derives its handshake URL from it.
func (c *Client) BaseURL() string { return c.baseURL }

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool. Call this after a network disruption to
// force subsequent requests to establish fresh TCP connections instead
// of reusing a poisoned pooled connection.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Projects fetches the full project collection in server order.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/projects", nil)
	if err != nil {
		return nil, fmt.Errorf("board: listing projects: %w", err)
	}

	var projects []Project
	if err := json.Unmarshal(body, &projects); err != nil {
		return nil, fmt.Errorf("board: parsing project list: %w", err)
	}
	return projects, nil
}

// CreateProject creates a new project with the given name. The server
// assigns the identifier and broadcasts a CreateProject event to every
// connected client; the local mirror picks the project up from that
// event, not from this call's return.
func (c *Client) CreateProject(ctx context.Context, name string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/api/projects", createProjectRequest{Name: name})
	if err != nil {
		return fmt.Errorf("board: creating project: %w", err)
	}
	return nil
}

// UpdateProject renames a project. Broadcast to room non-members too:
// every client mirrors the project list.
func (c *Client) UpdateProject(ctx context.Context, id ref.ProjectID, name string) error {
	request := updateProjectRequest{ID: id.String(), Name: name}
	_, err := c.doRequest(ctx, http.MethodPut, "/api/projects/"+id.String(), request)
	if err != nil {
		return fmt.Errorf("board: updating project %s: %w", id, err)
	}
	return nil
}

// DeleteProject deletes a project and, server-side, its task items.
func (c *Client) DeleteProject(ctx context.Context, id ref.ProjectID) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/api/projects/"+id.String(), nil)
	if err != nil {
		return fmt.Errorf("board: deleting project %s: %w", id, err)
	}
	return nil
}

// Tasks fetches the full task collection of one project in server
// order.
func (c *Client) Tasks(ctx context.Context, projectID ref.ProjectID) ([]TaskItem, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/todos/"+projectID.String()+"/todos", nil)
	if err != nil {
		return nil, fmt.Errorf("board: listing tasks of project %s: %w", projectID, err)
	}

	var tasks []TaskItem
	if err := json.Unmarshal(body, &tasks); err != nil {
		return nil, fmt.Errorf("board: parsing task list: %w", err)
	}
	return tasks, nil
}

// CreateTask creates a task item in a project. The tag is computed by
// the caller (see Predict); the server stores it verbatim and never
// recomputes it.
func (c *Client) CreateTask(ctx context.Context, projectID ref.ProjectID, username, text, tag string) error {
	request := createTaskRequest{
		Username:  username,
		ProjectID: projectID.String(),
		Text:      text,
		Tag:       tag,
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/api/projects/"+projectID.String()+"/todos", request)
	if err != nil {
		return fmt.Errorf("board: creating task in project %s: %w", projectID, err)
	}
	return nil
}

// UpdateTask updates a task item's text and completion state. The
// task's existing tag must be passed through unchanged.
func (c *Client) UpdateTask(ctx context.Context, task TaskItem) error {
	request := updateTaskRequest{
		Text:      task.Text,
		Completed: task.Completed,
		Username:  task.Username,
		ProjectID: task.ProjectID.String(),
		ID:        task.ID.String(),
		Tag:       task.Tag,
	}
	path := "/api/todos/" + task.ProjectID.String() + "/" + task.ID.String()
	_, err := c.doRequest(ctx, http.MethodPut, path, request)
	if err != nil {
		return fmt.Errorf("board: updating task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteTask deletes a task item.
func (c *Client) DeleteTask(ctx context.Context, projectID ref.ProjectID, id ref.TaskID) error {
	path := "/api/todos/" + projectID.String() + "/" + id.String()
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return fmt.Errorf("board: deleting task %s: %w", id, err)
	}
	return nil
}

// doRequest performs an HTTP request to the backend and returns the
// response body. On 2xx, returns the body. On 4xx/5xx, returns an
// *APIError carrying the status code and the response body. query may
// be omitted for endpoints without query parameters.
func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any, query ...url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 && query[0] != nil {
		requestURL += "?" + query[0].Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	// The backend reports errors as a plain-text or JSON body with no
	// fixed shape, so the raw body is the message.
	return nil, &APIError{
		StatusCode: response.StatusCode,
		Message:    strings.TrimSpace(string(responseBody)),
	}
}
