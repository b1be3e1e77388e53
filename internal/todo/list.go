package todo

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vango-dev/taskboard/pkg/tasks"
	"github.com/vango-dev/taskboard/pkg/toast"
	. "github.com/vango-dev/taskboard/pkg/vdom"
)

// User-facing failure messages.
const (
	ErrorTitle      = "Error"
	MsgFetchFailed  = "Failed to fetch tasks. Please try again later."
	MsgAddFailed    = "Failed to add task. Please try again."
	MsgUpdateFailed = "Failed to update task. Please try again."
	MsgDeleteFailed = "Failed to delete task. Please try again."
)

// Filter selects which tasks are shown.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

type filterButton struct {
	value Filter
	label string
}

var filters = []filterButton{
	{FilterAll, "All"},
	{FilterCompleted, "Completed"},
	{FilterPending, "Pending"},
}

// Dispatcher runs fn on the goroutine that owns the UI state.
type Dispatcher interface {
	Dispatch(fn func())
}

// ListOption configures a List.
type ListOption func(*List)

// WithContext sets the context API calls run under. It should end when the
// session does.
func WithContext(ctx context.Context) ListOption {
	return func(l *List) { l.ctx = ctx }
}

// WithLogger sets the logger for API failures.
func WithLogger(logger *slog.Logger) ListOption {
	return func(l *List) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithRunner replaces the function that starts API calls. Tests pass a
// synchronous runner.
func WithRunner(run func(func())) ListOption {
	return func(l *List) {
		if run != nil {
			l.run = run
		}
	}
}

// List is the task list component. Its methods and Render must be called
// from the dispatcher's goroutine.
type List struct {
	svc      tasks.Service
	notifier toast.Notifier
	dispatch Dispatcher
	ctx      context.Context
	logger   *slog.Logger
	run      func(func())

	tasks    []tasks.Task
	input    string
	filter   Filter
	editing  bool
	editID   int
	editText string
	loading  bool
}

// New creates a List in the loading state. Mount starts the fetch. When n is
// nil the notifier is taken from the WithContext context and New panics if
// that context carries none.
func New(svc tasks.Service, n toast.Notifier, d Dispatcher, opts ...ListOption) *List {
	l := &List{
		svc:      svc,
		notifier: n,
		dispatch: d,
		ctx:      context.Background(),
		logger:   slog.Default().With("component", "todo"),
		run:      func(fn func()) { go fn() },
		filter:   FilterAll,
		loading:  true,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.notifier == nil {
		l.notifier = toast.MustFrom(l.ctx)
	}
	return l
}

// Mount loads the task list.
func (l *List) Mount() {
	l.Reload()
}

// Reload fetches the task list again.
func (l *List) Reload() {
	l.loading = true
	l.call("list", MsgFetchFailed, func(ctx context.Context) (func(), error) {
		ts, err := l.svc.List(ctx)
		return func() { l.tasks = ts }, err
	}, func() { l.loading = false })
}

// SetInput updates the new-task text.
func (l *List) SetInput(v string) {
	l.input = v
}

// Add creates a task from the input. Blank input is ignored.
func (l *List) Add() {
	desc := l.input
	if strings.TrimSpace(desc) == "" {
		return
	}
	l.call("create", MsgAddFailed, func(ctx context.Context) (func(), error) {
		t, err := l.svc.Create(ctx, desc)
		return func() {
			l.tasks = append(l.tasks, t)
			l.input = ""
		}, err
	}, nil)
}

// Toggle flips the completion state of task id.
func (l *List) Toggle(id int) {
	i := l.index(id)
	if i < 0 {
		return
	}
	completed := l.tasks[i].Completed
	op, call := "complete", l.svc.Complete
	if completed {
		op, call = "uncomplete", l.svc.Uncomplete
	}
	l.call(op, MsgUpdateFailed, func(ctx context.Context) (func(), error) {
		err := call(ctx, id)
		return func() {
			if j := l.index(id); j >= 0 {
				l.tasks[j].Completed = !completed
			}
		}, err
	}, nil)
}

// StartEdit switches task id to inline editing.
func (l *List) StartEdit(id int, description string) {
	l.editing = true
	l.editID = id
	l.editText = description
}

// SetEditText updates the inline edit text.
func (l *List) SetEditText(v string) {
	l.editText = v
}

// SaveEdit sends the edited description.
func (l *List) SaveEdit() {
	if !l.editing {
		return
	}
	id, desc := l.editID, l.editText
	l.call("update", MsgUpdateFailed, func(ctx context.Context) (func(), error) {
		err := l.svc.UpdateDescription(ctx, id, desc)
		return func() {
			if j := l.index(id); j >= 0 {
				l.tasks[j].Description = desc
			}
			if l.editing && l.editID == id {
				l.editing = false
			}
		}, err
	}, nil)
}

// Delete removes task id.
func (l *List) Delete(id int) {
	l.call("delete", MsgDeleteFailed, func(ctx context.Context) (func(), error) {
		err := l.svc.Delete(ctx, id)
		return func() {
			if j := l.index(id); j >= 0 {
				l.tasks = append(l.tasks[:j], l.tasks[j+1:]...)
			}
		}, err
	}, nil)
}

// SetFilter changes which tasks are shown.
func (l *List) SetFilter(f Filter) {
	switch f {
	case FilterCompleted, FilterPending:
		l.filter = f
	default:
		l.filter = FilterAll
	}
}

// Visible returns the tasks matching the current filter.
func (l *List) Visible() []tasks.Task {
	out := make([]tasks.Task, 0, len(l.tasks))
	for _, t := range l.tasks {
		switch {
		case l.filter == FilterCompleted && !t.Completed:
		case l.filter == FilterPending && t.Completed:
		default:
			out = append(out, t)
		}
	}
	return out
}

// Tasks returns all loaded tasks.
func (l *List) Tasks() []tasks.Task { return l.tasks }

// Input returns the new-task text.
func (l *List) Input() string { return l.input }

// Filter returns the current filter.
func (l *List) Filter() Filter { return l.filter }

// Loading reports whether the list is being fetched.
func (l *List) Loading() bool { return l.loading }

// Editing returns the task being edited.
func (l *List) Editing() (id int, ok bool) { return l.editID, l.editing }

func (l *List) index(id int) int {
	for i, t := range l.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// call runs fn off the UI goroutine. On success the returned apply func runs
// on the dispatcher. On failure the error is logged and msg is shown. always
// runs on the dispatcher either way.
func (l *List) call(op, msg string, fn func(context.Context) (func(), error), always func()) {
	ctx := l.ctx
	l.run(func() {
		apply, err := fn(ctx)
		l.dispatch.Dispatch(func() {
			if always != nil {
				always()
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("task API call failed", "op", op, "error", err)
				toast.WithTitle(l.notifier, toast.KindInfo, ErrorTitle, msg)
				return
			}
			apply()
		})
	})
}

// Render builds the task list UI.
func (l *List) Render() *VNode {
	return Div(Class("todo"),
		H1(Class("todo-title"), Text("Todo List")),
		Div(Class("todo-input"),
			Label(For("new-task"), Class("sr-only"), Text("New Task")),
			Input(
				ID("new-task"),
				Type("text"),
				Placeholder("Add a new task"),
				Value(l.input),
				OnInput(l.SetInput),
			),
			Button(ID("add-task"), Class("btn", "btn-primary"), OnClick(l.Add), Text("Add")),
		),
		Div(Class("todo-filters"), Role("group"),
			Range(filters, func(f filterButton, _ int) *VNode {
				value := f.value
				return Button(
					ID("filter-"+string(value)),
					Class("btn"),
					ClassIf(l.filter == value, "active"),
					AriaPressed(l.filter == value),
					OnClick(func() { l.SetFilter(value) }),
					Text(f.label),
				)
			}),
		),
		IfElse(l.loading,
			Div(Class("todo-loading"), AriaBusy(true), Text("Loading...")),
			Ul(Class("todo-items"), Range(l.Visible(), l.renderItem)),
		),
	)
}

func (l *List) renderItem(t tasks.Task, _ int) *VNode {
	id := t.ID
	checkboxID := "task-" + strconv.Itoa(id)
	editing := l.editing && l.editID == id

	var body, action *VNode
	if editing {
		body = Input(
			ID("edit-"+strconv.Itoa(id)),
			Class("todo-edit"),
			Value(l.editText),
			OnInput(l.SetEditText),
		)
		action = Button(Class("btn", "btn-save"), OnClick(l.SaveEdit), Text("Save"))
	} else {
		desc := t.Description
		body = Label(For(checkboxID), Class("todo-text"), ClassIf(t.Completed, "done"), Text(desc))
		action = Button(
			Class("btn", "btn-edit"),
			AriaLabel("Edit "+desc),
			OnClick(func() { l.StartEdit(id, desc) }),
			Text("Edit"),
		)
	}

	return Li(Key(id), Class("todo-item"),
		Input(
			Type("checkbox"),
			ID(checkboxID),
			Checked(t.Completed),
			OnChange(func(string) { l.Toggle(id) }),
		),
		body,
		Div(Class("todo-actions"),
			action,
			Button(
				Class("btn", "btn-delete"),
				AriaLabel("Delete "+t.Description),
				OnClick(func() { l.Delete(id) }),
				Text("Delete"),
			),
		),
	)
}
