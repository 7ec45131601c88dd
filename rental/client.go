package rental

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx response surfaced as-is to the caller. Nothing in
// the client retries or reinterprets it.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, snippet(body, 200))
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client issues JSON requests against the rental API. Every request passes
// through the auth pipeline, which attaches the persisted credential.
type Client struct {
	base  string
	httpc *http.Client
}

// NewClient builds a client rooted at baseURL whose requests carry the
// credential from store.
func NewClient(baseURL string, store TokenSource, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{
			Timeout:   timeout,
			Transport: &AuthTransport{Source: store},
		},
	}
}

// do performs one request. body==nil sends no payload; out==nil discards the
// response body. Non-2xx responses come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// getRaw fetches path and hands back the raw body for shape-tolerant
// decoding.
func (c *Client) getRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// pagedEnvelope is the alternative list shape some endpoints return.
type pagedEnvelope[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
}

// decodeList normalizes the two list shapes the backend is known to produce:
// a bare array, or a {content,totalElements} envelope. Anything else logs a
// warning and yields an empty slice; a bad shape is never fatal.
func decodeList[T any](path string, data []byte) []T {
	var plain []T
	if err := json.Unmarshal(data, &plain); err == nil {
		if plain == nil {
			plain = []T{}
		}
		return plain
	}
	var env pagedEnvelope[T]
	if err := json.Unmarshal(data, &env); err == nil && env.Content != nil {
		return env.Content
	}
	log.Printf("WARN: GET %s: unexpected list payload shape: %s", path, snippet(string(data), 120))
	return []T{}
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// resource is the generic CRUD surface over one collection endpoint. Typed
// per-entity clients in resources.go choose which operations to expose.
type resource[T any] struct {
	c    *Client
	path string
}

func (r resource[T]) List(ctx context.Context) ([]T, error) {
	data, err := r.c.getRaw(ctx, r.path)
	if err != nil {
		return nil, err
	}
	return decodeList[T](r.path, data), nil
}

// listAt fetches an extra collection endpoint under the resource, e.g.
// /equipos/catalogo, with the same shape tolerance as List.
func (r resource[T]) listAt(ctx context.Context, sub string) ([]T, error) {
	path := r.path + sub
	data, err := r.c.getRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeList[T](path, data), nil
}

func (r resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", r.path, id), nil, &out)
	return out, err
}

func (r resource[T]) Create(ctx context.Context, draft any) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodPost, r.path, draft, &out)
	return out, err
}

func (r resource[T]) Update(ctx context.Context, id int64, draft any) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", r.path, id), draft, &out)
	return out, err
}

func (r resource[T]) Delete(ctx context.Context, id int64) error {
	return r.c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", r.path, id), nil, nil)
}
