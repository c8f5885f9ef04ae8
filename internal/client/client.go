// Package client is a small HTTP client for the back-office API, used by boctl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kiwari-pos/backoffice/internal/pager"
	"github.com/kiwari-pos/backoffice/internal/source"
)

const apiPrefix = "/api/v1"

// Client talks to one server with one access token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the server at baseURL (scheme and host, no path).
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response. Message is the server's "error" field.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// User is the authenticated user returned by login.
type User struct {
	ID       string `json:"id"`
	BranchID string `json:"branch_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Tokens is the login response.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Page is one page of a list endpoint.
type Page struct {
	Data        []json.RawMessage `json:"data"`
	Page        int               `json:"page"`
	PageSize    int               `json:"page_size"`
	HasNextPage bool              `json:"has_next_page"`
}

// Login exchanges email and password for tokens. It does not store them.
func (c *Client) Login(ctx context.Context, email, password string) (*Tokens, error) {
	var tokens Tokens
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/auth/login", body, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Me returns the user the token belongs to.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListPage fetches one page of the list endpoint at path (relative to /api/v1).
func (c *Client) ListPage(ctx context.Context, path string, filters url.Values, page, pageSize int) (*Page, error) {
	q := url.Values{}
	for k, vs := range filters {
		q[k] = vs
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var p Page
	if err := c.do(ctx, http.MethodGet, apiPrefix+path+"?"+q.Encode(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Fetcher adapts a list endpoint to a pager.FetchFunc. Each call is bounded by
// timeout; a zero timeout leaves only the client-wide limit.
func (c *Client) Fetcher(path string, filters url.Values, timeout time.Duration) pager.FetchFunc[json.RawMessage] {
	fetch := func(ctx context.Context, page, pageSize int) ([]json.RawMessage, error) {
		p, err := c.ListPage(ctx, path, filters, page, pageSize)
		if err != nil {
			return nil, err
		}
		return p.Data, nil
	}
	if timeout <= 0 {
		return fetch
	}
	return source.WithTimeout(fetch, timeout)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
