package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is the public task API.
const DefaultBaseURL = "https://todo-list-api-2hsk.onrender.com/tasks"

// DefaultTimeout bounds a single API call.
const DefaultTimeout = 10 * time.Second

const tracerName = "taskboard/tasks"

// Service is the set of task operations the UI depends on.
type Service interface {
	List(ctx context.Context) ([]Task, error)
	Create(ctx context.Context, description string) (Task, error)
	Complete(ctx context.Context, id int) error
	Uncomplete(ctx context.Context, id int) error
	UpdateDescription(ctx context.Context, id int, description string) error
	Delete(ctx context.Context, id int) error
}

// Observer is notified after every API call.
type Observer interface {
	ObserveTaskCall(op string, d time.Duration, err error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithObserver sets the call observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithTracer overrides the tracer resolved from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// Client talks to the task API.
type Client struct {
	base     string
	http     *http.Client
	timeout  time.Duration
	observer Observer
	tracer   trace.Tracer
}

var _ Service = (*Client)(nil)

// NewClient creates a client for the API rooted at baseURL. An empty
// baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the collection URL requests are sent to.
func (c *Client) BaseURL() string { return c.base }

// List returns every task.
func (c *Client) List(ctx context.Context) ([]Task, error) {
	var out []Task
	if err := c.do(ctx, "list", http.MethodGet, c.base, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a task and returns it as stored by the API.
func (c *Client) Create(ctx context.Context, description string) (Task, error) {
	if strings.TrimSpace(description) == "" {
		return Task{}, ErrEmptyDescription
	}
	var out Task
	err := c.do(ctx, "create", http.MethodPost, c.base, descriptionBody{Description: description}, &out)
	return out, err
}

// Complete marks a task done.
func (c *Client) Complete(ctx context.Context, id int) error {
	return c.do(ctx, "complete", http.MethodPut, c.taskURL(id)+"/complete", nil, nil)
}

// Uncomplete marks a task pending.
func (c *Client) Uncomplete(ctx context.Context, id int) error {
	return c.do(ctx, "uncomplete", http.MethodPut, c.taskURL(id)+"/uncomplete", nil, nil)
}

// UpdateDescription renames a task. The text is sent as edited, blank or
// not; the API decides whether it is acceptable.
func (c *Client) UpdateDescription(ctx context.Context, id int, description string) error {
	return c.do(ctx, "update", http.MethodPatch, c.taskURL(id), descriptionBody{Description: description}, nil)
}

// Delete removes a task.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, "delete", http.MethodDelete, c.taskURL(id), nil, nil)
}

func (c *Client) taskURL(id int) string {
	return c.base + "/" + strconv.Itoa(id)
}

func (c *Client) do(ctx context.Context, op, method, url string, body, out any) (err error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "tasks."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", url),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		if c.observer != nil {
			c.observer.ObserveTaskCall(op, time.Since(start), err)
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("tasks: %s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("tasks: %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tasks: %s: %w", op, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Op: op, StatusCode: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadResponse, op, err)
	}
	return nil
}
