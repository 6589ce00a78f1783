// Package remote provides the typed client for the remote system of
// record's REST contract. Both the reconciliation loop and the
// optimistic mutator go through it.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmoralesp/turnero/internal/domain"
	"github.com/dmoralesp/turnero/internal/session"
)

// APIKeyHeader carries the shared secret identifying the gateway to the
// remote system.
const APIKeyHeader = "X-Api-Key"

// Client talks to the remote system of record, either directly (with
// the shared API key, the gateway's own position) or through the
// gateway (with a session cookie, the dashboard's position).
type Client struct {
	baseURL string
	apiKey  string
	sess    *session.Session
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey authenticates requests with the shared secret header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithSession authenticates requests with a session cookie, for clients
// that reach the remote system through the gateway.
func WithSession(s *session.Session) Option {
	return func(c *Client) { c.sess = s }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSnapshot retrieves the current record list and aggregate counts
// for the vertical. The list endpoint envelope is
// {success, <records-key>: [...], stats: {...}}; the stats block is
// taken as authoritative.
func (c *Client) FetchSnapshot(ctx context.Context, v domain.Vertical) (*domain.Snapshot, error) {
	body, err := c.do(ctx, http.MethodGet, v.BasePath, nil)
	if err != nil {
		return nil, err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed list response: %w", err)
	}
	var success bool
	if raw, ok := envelope["success"]; ok {
		if err := json.Unmarshal(raw, &success); err != nil {
			return nil, fmt.Errorf("malformed list response: %w", err)
		}
	}
	if !success {
		return nil, fmt.Errorf("remote reported failure listing %s", v.RecordsKey)
	}

	var records []domain.Record
	if raw, ok := envelope[v.RecordsKey]; ok {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("malformed %s list: %w", v.RecordsKey, err)
		}
	}

	snap := &domain.Snapshot{
		Records: records,
		Stats:   make(map[domain.Status]int, len(v.Statuses)),
	}
	if raw, ok := envelope["stats"]; ok {
		var stats map[string]int
		if err := json.Unmarshal(raw, &stats); err != nil {
			return nil, fmt.Errorf("malformed stats: %w", err)
		}
		for name, count := range stats {
			if name == "total" {
				snap.Total = count
				continue
			}
			snap.Stats[domain.Status(name)] = count
		}
	}
	return snap, nil
}

// UpdateStatus persists a status change for one record:
// PUT {base}{vertical}/{rowId}/estado with body {estado: <status>}.
func (c *Client) UpdateStatus(ctx context.Context, v domain.Vertical, rowID int, status domain.Status) error {
	payload, err := json.Marshal(map[string]string{"estado": status.String()})
	if err != nil {
		return err
	}
	path := fmt.Sprintf("%s/%d/estado", v.BasePath, rowID)
	body, err := c.do(ctx, http.MethodPut, path, payload)
	if err != nil {
		return err
	}
	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("malformed update response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("remote rejected status update for row %d", rowID)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	if c.sess != nil {
		value, err := c.sess.Encode()
		if err != nil {
			return nil, err
		}
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: value})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote returned %d for %s %s", resp.StatusCode, method, path)
	}
	return data, nil
}
