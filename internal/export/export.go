package export

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/vango-dev/taskboard/internal/errors"
	"github.com/vango-dev/taskboard/pkg/tasks"
)

// ContentType of every snapshot.
const ContentType = "application/json"

// Option configures an Exporter.
type Option func(*Exporter)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(e *Exporter) { e.prefix = prefix }
}

// WithSource records where the tasks came from.
func WithSource(source string) Option {
	return func(e *Exporter) { e.source = source }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Exporter copies the task list into a Store.
type Exporter struct {
	svc    tasks.Service
	store  Store
	prefix string
	source string
	now    func() time.Time
	logger *slog.Logger
}

// New creates an Exporter.
func New(svc tasks.Service, store Store, opts ...Option) *Exporter {
	e := &Exporter{
		svc:    svc,
		store:  store,
		now:    time.Now,
		logger: slog.Default().With("component", "export"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result describes a written snapshot.
type Result struct {
	Location  string
	Total     int
	Completed int
	Bytes     int
}

// Run fetches the task list and writes one snapshot.
func (e *Exporter) Run(ctx context.Context) (Result, error) {
	ts, err := e.svc.List(ctx)
	if err != nil {
		return Result{}, apiError(err)
	}

	at := e.now()
	snap := NewSnapshot(ts, e.source, at)
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Result{}, errors.New("TB303").Wrap(err)
	}
	body = append(body, '\n')

	key := ObjectKey(e.prefix, at)
	loc, err := e.store.Put(ctx, key, ContentType, body, map[string]string{
		"task-count":  strconv.Itoa(snap.Total),
		"exported-at": snap.ExportedAt.Format(time.RFC3339),
	})
	if err != nil {
		return Result{}, errors.New("TB302").
			WithDetail("Could not write " + key).
			Wrap(err)
	}

	e.logger.Info("snapshot exported", "location", loc, "tasks", snap.Total, "bytes", len(body))
	return Result{Location: loc, Total: snap.Total, Completed: snap.Completed, Bytes: len(body)}, nil
}

// apiError maps a task client failure to its CLI error code.
func apiError(err error) *errors.Error {
	var status *tasks.StatusError
	switch {
	case stderrors.As(err, &status):
		e := errors.New("TB202").
			WithDetail("The task API answered " + strconv.Itoa(status.StatusCode) + " to " + status.Op + ".")
		switch {
		case tasks.IsNotFound(err):
			e = e.WithSuggestion("Check that api.base_url points at the task API root")
		case status.Temporary():
			e = e.WithSuggestion("The task API is failing or throttling requests. Retry the export later")
		}
		return e.Wrap(err)
	case stderrors.Is(err, tasks.ErrBadResponse):
		return errors.New("TB203").Wrap(err)
	default:
		return errors.New("TB201").Wrap(err)
	}
}
