// Package supabase is a thin PostgREST client used as the record
// gateway. It is table-addressed and supports exactly what the agent
// tools need: filtered selects, inserts, and filtered updates.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	contractx "github.com/medibot-ai/medibot/agent/contract"
)

const (
	restPath             = "/rest/v1"
	maxResponseSizeBytes = 4 << 20
)

type Config struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Key     string        `envconfig:"KEY" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// ClientOption customizes Client.
type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Client talks to a Supabase PostgREST endpoint.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

var _ contractx.RecordGateway = (*Client)(nil)

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("supabase url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid supabase url: %w", err)
	}

	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		return nil, errors.New("supabase key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL: baseURL + restPath,
		key:     key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

func MustNew(cfg Config, opts ...ClientOption) *Client {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

// Select returns matching rows from a table as raw JSON objects.
func (c *Client) Select(ctx context.Context, table string, query contractx.Query) ([]json.RawMessage, error) {
	endpoint, err := c.tableURL(table)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("select", "*")
	for _, f := range query.Filters {
		params.Set(f.Column, string(f.Op)+"."+f.Value)
	}
	if query.Order != nil {
		direction := "asc"
		if query.Order.Desc {
			direction = "desc"
		}
		params.Set("order", query.Order.Column+"."+direction)
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}

	raw, err := c.do(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode rows from table=%s: %w", table, err)
	}
	return rows, nil
}

// Insert adds one row and returns the stored representation.
func (c *Client) Insert(ctx context.Context, table string, row map[string]any) (json.RawMessage, error) {
	endpoint, err := c.tableURL(table)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("marshal row for table=%s: %w", table, err)
	}

	raw, err := c.do(ctx, http.MethodPost, endpoint, body, map[string]string{
		"Prefer": "return=representation",
	})
	if err != nil {
		return nil, err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode inserted row for table=%s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert into table=%s returned no row", table)
	}
	return rows[0], nil
}

// Update patches all rows matching the filters.
func (c *Client) Update(ctx context.Context, table string, patch map[string]any, filters []contractx.Filter) error {
	if len(filters) == 0 {
		return errors.New("update requires at least one filter")
	}

	endpoint, err := c.tableURL(table)
	if err != nil {
		return err
	}

	params := url.Values{}
	for _, f := range filters {
		params.Set(f.Column, string(f.Op)+"."+f.Value)
	}

	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal patch for table=%s: %w", table, err)
	}

	_, err = c.do(ctx, http.MethodPatch, endpoint+"?"+params.Encode(), body, map[string]string{
		"Prefer": "return=minimal",
	})
	return err
}

func (c *Client) tableURL(table string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", errors.New("table name is required")
	}
	return c.baseURL + "/" + table, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute gateway request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("gateway http status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	return raw, nil
}
