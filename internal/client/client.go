// Package client wraps the tasknotes HTTP API for interactive frontends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tasknotes/internal/store"
)

// Client talks to a running tasknotes server. A cookie jar carries the
// session cookie across calls once the user has logged in.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

// NewWithHTTPClient is for tests that need to control the transport.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) Projects(ctx context.Context) ([]store.Project, error) {
	var items []store.Project
	if err := c.do(ctx, http.MethodGet, "/api/project", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateProject(ctx context.Context, title string) (store.Project, error) {
	var created store.Project
	err := c.do(ctx, http.MethodPost, "/api/project", nil, store.NewProject{Title: title}, &created)
	return created, err
}

func (c *Client) DeleteProject(ctx context.Context, id int64) (store.Project, error) {
	var deleted store.Project
	query := url.Values{"id": {strconv.FormatInt(id, 10)}}
	err := c.do(ctx, http.MethodDelete, "/api/project", query, nil, &deleted)
	return deleted, err
}

func (c *Client) UpdateProject(ctx context.Context, patch store.PatchProject) (store.PatchProject, error) {
	var echoed store.PatchProject
	err := c.do(ctx, http.MethodPatch, "/api/project", nil, patch, &echoed)
	return echoed, err
}

func (c *Client) Tasks(ctx context.Context, projectID int64) ([]store.Task, error) {
	var items []store.Task
	query := url.Values{"projectId": {strconv.FormatInt(projectID, 10)}}
	if err := c.do(ctx, http.MethodGet, "/api/task", query, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateTask(ctx context.Context, projectID int64, title string) (store.Task, error) {
	var created store.Task
	err := c.do(ctx, http.MethodPost, "/api/task", nil, store.NewTask{ProjectID: projectID, Title: title}, &created)
	return created, err
}

func (c *Client) DeleteTask(ctx context.Context, id int64) (store.Task, error) {
	var deleted store.Task
	query := url.Values{"id": {strconv.FormatInt(id, 10)}}
	err := c.do(ctx, http.MethodDelete, "/api/task", query, nil, &deleted)
	return deleted, err
}

// LoginURL is where a browser should be pointed to start the OAuth flow.
func (c *Client) LoginURL() string {
	return c.baseURL + "/login"
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, target any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: server returned %d", method, path, resp.StatusCode)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
