// Package postgrest is a thin client for a PostgREST-style REST interface
// addressed by table name and authenticated with a static bearer credential.
//
// The client never retries and configures no timeout of its own; callers
// bound requests through the context they pass in.
package postgrest

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

	"github.com/okian/mission-control/pkg/logger"
	"github.com/okian/mission-control/pkg/metrics"
)

const (
	upstreamTarget = "store"
	maxErrorBody   = 64 << 10
)

// Client talks to the store.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
	logger  logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for baseURL (e.g. "https://x.supabase.co/rest/v1").
func New(baseURL, key string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		key:     key,
		http:    http.DefaultClient,
		logger:  logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Select runs GET /table?query and decodes the row array into dst.
func (c *Client) Select(ctx context.Context, table string, q *Query, dst any) error {
	if err := q.Err(); err != nil {
		return err
	}
	return c.do(ctx, "select", http.MethodGet, c.tableURL(table, q.Values()), nil, "", dst)
}

// Insert runs POST /table and decodes the stored representation into dst.
// body may be a single object or an array of objects.
func (c *Client) Insert(ctx context.Context, table string, body any, dst any) error {
	return c.do(ctx, "insert", http.MethodPost, c.tableURL(table, nil), body, "return=representation", dst)
}

// Update runs PATCH /table?query with patch as the body.
func (c *Client) Update(ctx context.Context, table string, q *Query, patch any, dst any) error {
	if err := q.Err(); err != nil {
		return err
	}
	if !q.HasFilters() {
		return fmt.Errorf("%w: update %s", ErrUnfiltered, table)
	}
	return c.do(ctx, "update", http.MethodPatch, c.tableURL(table, q.Values()), patch, "return=representation", dst)
}

// Delete runs DELETE /table?query.
func (c *Client) Delete(ctx context.Context, table string, q *Query) error {
	if err := q.Err(); err != nil {
		return err
	}
	if !q.HasFilters() {
		return fmt.Errorf("%w: delete %s", ErrUnfiltered, table)
	}
	return c.do(ctx, "delete", http.MethodDelete, c.tableURL(table, q.Values()), nil, "return=minimal", nil)
}

// Upsert inserts rows, merging on the onConflict columns.
func (c *Client) Upsert(ctx context.Context, table, onConflict string, rows any, dst any) error {
	vals := url.Values{}
	if onConflict != "" {
		vals.Set("on_conflict", onConflict)
	}
	return c.do(ctx, "upsert", http.MethodPost, c.tableURL(table, vals), rows,
		"resolution=merge-duplicates,return=representation", dst)
}

// RPC calls a stored function: POST /rpc/fn with args as the JSON body.
func (c *Client) RPC(ctx context.Context, fn string, args any, dst any) error {
	if !validField(fn) {
		return fmt.Errorf("%w: %q", ErrInvalidField, fn)
	}
	return c.do(ctx, "rpc", http.MethodPost, c.baseURL+"/rpc/"+fn, args, "", dst)
}

func (c *Client) tableURL(table string, vals url.Values) string {
	u := c.baseURL + "/" + url.PathEscape(table)
	if enc := vals.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

func (c *Client) do(ctx context.Context, op, method, u string, body any, prefer string, dst any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode %s body: %v", ErrRequest, op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("%w: build %s request: %v", ErrRequest, op, err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordUpstreamCall(upstreamTarget, op, "transport_error")
		metrics.RecordUpstreamLatency(upstreamTarget, op, elapsed)
		c.logger.Error(ctx, "store request failed",
			logger.String("op", op),
			logger.String("method", method),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %s: %v", ErrRequest, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RecordUpstreamCall(upstreamTarget, op, strconv.Itoa(resp.StatusCode))
	metrics.RecordUpstreamLatency(upstreamTarget, op, elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if jerr := json.Unmarshal(raw, se); jerr != nil || se.Message == "" {
			se.Message = strings.TrimSpace(string(raw))
		}
		c.logger.Warn(ctx, "store returned error status",
			logger.String("op", op),
			logger.Int("status", resp.StatusCode),
			logger.String("code", se.Code),
			logger.String("message", se.Message),
		)
		return se
	}

	if dst == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: decode %s response: %v", ErrRequest, op, err)
	}
	return nil
}
