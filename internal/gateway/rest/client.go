// Package rest talks to the bookkeeping service over HTTP/JSON.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mywallet/internal/core"
	"mywallet/internal/gateway"
)

const DefaultBaseURL = "http://localhost:8080/mywallet"

// Client issues exactly one request per call. There is no retry; a failure
// is reported once and the user decides whether to try again.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

var (
	_ gateway.Totals = (*Client)(nil)
	_ gateway.Pinger = (*Client)(nil)
)

type Option func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a client for baseURL (e.g. http://host:8080/mywallet). A zero
// timeout leaves requests bounded only by the caller's context.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    newHTTPClientWithPooling(timeout),
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Gateway exposes the client as the full set of resources.
func (c *Client) Gateway() gateway.Gateway {
	return gateway.Gateway{
		Accounts:     &resource[core.RawAccount]{c: c, path: "account"},
		Categories:   &resource[core.RawCategory]{c: c, path: "category"},
		Persons:      &resource[core.RawPerson]{c: c, path: "person"},
		Transactions: &resource[core.RawTransaction]{c: c, path: "transaction"},
		Totals:       c,
	}
}

func newHTTPClientWithPooling(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

func (c *Client) AccountWiseTotal(ctx context.Context) ([]core.RawAccountTotal, error) {
	var out []core.RawAccountTotal
	err := c.do(ctx, "transaction.accountWiseTotal", http.MethodGet, "/transaction/accountWiseTotal", nil, &out)
	return out, err
}

func (c *Client) CategoryWiseTotal(ctx context.Context) ([]core.RawCategoryTotal, error) {
	var out []core.RawCategoryTotal
	err := c.do(ctx, "transaction.categoryWiseTotal", http.MethodGet, "/transaction/categoryWiseTotal", nil, &out)
	return out, err
}

// Ping lists categories, the smallest collection the service exposes.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/category/all", nil, nil)
}

// do sends one request and decodes a 2xx body into out (when non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &gateway.Error{Op: op, Kind: gateway.KindDecode, Err: fmt.Errorf("encode request: %w", err)}
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return &gateway.Error{Op: op, Kind: gateway.KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Gateway request failed", "op", op, "method", method, "path", path, "error", err)
		return &gateway.Error{Op: op, Kind: gateway.KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Gateway request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		ge := &gateway.Error{Op: op, Kind: gateway.KindStatus, StatusCode: resp.StatusCode}
		if resp.StatusCode == http.StatusNotFound {
			ge.Err = gateway.ErrNotFound
		}
		return ge
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &gateway.Error{Op: op, Kind: gateway.KindDecode, Err: err}
	}
	return nil
}

// actionEnvelope tolerates services that answer writes with a bare record or
// an empty body: a missing success flag counts as success.
type actionEnvelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) action(ctx context.Context, op, method, path string, body any) (gateway.ActionResult, error) {
	var raw json.RawMessage
	if err := c.do(ctx, op, method, path, body, &raw); err != nil {
		// An empty 2xx body is a plain acknowledgement.
		var ge *gateway.Error
		if errors.As(err, &ge) && ge.Kind == gateway.KindDecode && errors.Is(ge.Err, io.EOF) {
			return gateway.ActionResult{Success: true}, nil
		}
		return gateway.ActionResult{}, err
	}

	var env actionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Success == nil {
		return gateway.ActionResult{Success: true, Data: raw}, nil
	}
	res := gateway.ActionResult{Success: *env.Success, Message: env.Message, Data: env.Data}
	if !res.Success {
		return res, gateway.Rejected(op, res)
	}
	return res, nil
}

type resource[R any] struct {
	c    *Client
	path string
}

func (r *resource[R]) op(name string) string { return r.path + "." + name }

func (r *resource[R]) GetAll(ctx context.Context) ([]R, error) {
	var out []R
	if err := r.c.do(ctx, r.op("getAll"), http.MethodGet, "/"+r.path+"/all", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []R{}
	}
	return out, nil
}

func (r *resource[R]) GetByID(ctx context.Context, id int64) (R, error) {
	var out R
	err := r.c.do(ctx, r.op("getById"), http.MethodGet, "/"+r.path+"/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

func (r *resource[R]) Create(ctx context.Context, rec R) (gateway.ActionResult, error) {
	return r.c.action(ctx, r.op("create"), http.MethodPost, "/"+r.path+"/save", rec)
}

func (r *resource[R]) Update(ctx context.Context, rec R) (gateway.ActionResult, error) {
	return r.c.action(ctx, r.op("update"), http.MethodPut, "/"+r.path+"/save", rec)
}

func (r *resource[R]) Delete(ctx context.Context, id int64) (gateway.ActionResult, error) {
	return r.c.action(ctx, r.op("delete"), http.MethodDelete, "/"+r.path+"/"+strconv.FormatInt(id, 10), nil)
}
