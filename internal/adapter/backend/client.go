package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/xandwr/doctown-website/internal/config"
	"github.com/xandwr/doctown-website/internal/domain"
)

// StatusError reports a non-2xx backend response on a typed call.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return "backend: status=" + strconv.Itoa(e.Code)
}

// StatusOf extracts the backend status from err, or 0 if err is not a
// StatusError (network or decode failure).
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// Response carries a relayed backend reply: the upstream status code
// and the body exactly as the backend produced it.
type Response struct {
	Status int
	Body   []byte
}

// OK reports whether the backend answered 2xx.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client performs outbound HTTP calls against the Doctown backend API.
// One incoming request maps to at most a handful of sequential calls
// here; there are no retries and no fan-out.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a backend client from configuration.
func NewClient(cfg config.Config, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: cfg.BackendURL, httpClient: client}
}

// Do forwards one call to the backend and returns the status and body
// verbatim. A non-nil error means the call itself failed (network,
// request build); backend error statuses come back inside Response.
// An empty token sends no Authorization header.
func (c *Client) Do(ctx context.Context, method, path, token string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}
	return &Response{Status: resp.StatusCode, Body: payload}, nil
}

// CurrentUser resolves a session token into the user it belongs to.
func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.SessionUser, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/api/v1/users/me", token, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{Code: resp.Status, Body: resp.Body}
	}
	var user domain.SessionUser
	if err := json.Unmarshal(resp.Body, &user); err != nil {
		return nil, fmt.Errorf("decode current user: %w", err)
	}
	return &user, nil
}

// UpsertUserInput is the payload for creating or updating a user record
// after a completed GitHub login.
type UpsertUserInput struct {
	GitHubID    int64  `json:"github_id"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatar_url"`
	AccessToken string `json:"access_token"`
}

// UpsertedUser is the backend's reply to a user upsert.
type UpsertedUser struct {
	ID           int64  `json:"id"`
	SessionToken string `json:"session_token"`
}

// UpsertUser creates or updates the user record and returns the session
// token the backend minted, when it minted one.
func (c *Client) UpsertUser(ctx context.Context, in UpsertUserInput) (*UpsertedUser, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode user upsert: %w", err)
	}
	resp, err := c.Do(ctx, http.MethodPost, "/api/v1/users", "", payload)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{Code: resp.Status, Body: resp.Body}
	}
	var user UpsertedUser
	if err := json.Unmarshal(resp.Body, &user); err != nil {
		return nil, fmt.Errorf("decode user upsert: %w", err)
	}
	return &user, nil
}

// PublicDocpacks fetches the public docpack listing without auth.
func (c *Client) PublicDocpacks(ctx context.Context, limit int) (*domain.DocpackListing, error) {
	path := "/api/v1/docpacks"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	resp, err := c.Do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{Code: resp.Status, Body: resp.Body}
	}
	var listing domain.DocpackListing
	if err := json.Unmarshal(resp.Body, &listing); err != nil {
		return nil, fmt.Errorf("decode docpack listing: %w", err)
	}
	return &listing, nil
}

// DocpackByID fetches one docpack with the caller's session token so
// the backend can enforce ownership.
func (c *Client) DocpackByID(ctx context.Context, token, id string) (*domain.Docpack, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/api/v1/docpacks/id/"+id, token, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{Code: resp.Status, Body: resp.Body}
	}
	var docpack domain.Docpack
	if err := json.Unmarshal(resp.Body, &docpack); err != nil {
		return nil, fmt.Errorf("decode docpack: %w", err)
	}
	return &docpack, nil
}
