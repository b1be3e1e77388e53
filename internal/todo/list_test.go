package todo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/taskboard/pkg/tasks"
	"github.com/vango-dev/taskboard/pkg/toast"
	"github.com/vango-dev/taskboard/pkg/toast/toasttest"
	"github.com/vango-dev/taskboard/pkg/vtest"
)

var errAPI = &tasks.StatusError{Op: "test", StatusCode: 500}

// fakeService is an in-memory tasks.Service.
type fakeService struct {
	mu     sync.Mutex
	tasks  []tasks.Task
	nextID int
	fail   map[string]error
	calls  []string
}

func newFakeService(ts ...tasks.Task) *fakeService {
	return &fakeService{tasks: ts, nextID: 100, fail: map[string]error{}}
}

func (f *fakeService) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.fail[op]
}

func (f *fakeService) List(context.Context) ([]tasks.Task, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	return append([]tasks.Task(nil), f.tasks...), nil
}

func (f *fakeService) Create(_ context.Context, desc string) (tasks.Task, error) {
	if err := f.record("create"); err != nil {
		return tasks.Task{}, err
	}
	f.nextID++
	t := tasks.Task{ID: f.nextID, Description: desc}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeService) Complete(_ context.Context, id int) error {
	return f.record("complete")
}

func (f *fakeService) Uncomplete(_ context.Context, id int) error {
	return f.record("uncomplete")
}

func (f *fakeService) UpdateDescription(_ context.Context, id int, desc string) error {
	return f.record("update")
}

func (f *fakeService) Delete(_ context.Context, id int) error {
	return f.record("delete")
}

// syncDispatcher runs callbacks immediately.
type syncDispatcher struct{}

func (syncDispatcher) Dispatch(fn func()) { fn() }

func syncRunner(fn func()) { fn() }

type fixture struct {
	svc   *fakeService
	host  *toast.Host
	sched *toasttest.FakeScheduler
	list  *List
}

func newFixture(t *testing.T, svc *fakeService) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sched := toasttest.NewFakeScheduler()
	host := toast.NewHost(toast.WithScheduler(sched), toast.WithLogger(logger))
	t.Cleanup(host.Close)
	list := New(svc, host, syncDispatcher{},
		WithRunner(syncRunner),
		WithLogger(logger),
	)
	return &fixture{svc: svc, host: host, sched: sched, list: list}
}

func sampleTasks() []tasks.Task {
	return []tasks.Task{
		{ID: 1, Description: "Write report", Completed: false},
		{ID: 2, Description: "Buy milk", Completed: true},
	}
}

func expectToast(t *testing.T, host *toast.Host, description string) {
	t.Helper()
	req, ok := host.Current()
	if !ok {
		t.Fatalf("expected toast %q, host is empty", description)
	}
	if req.Title != ErrorTitle {
		t.Errorf("Title = %q, want %q", req.Title, ErrorTitle)
	}
	if req.Description != description {
		t.Errorf("Description = %q, want %q", req.Description, description)
	}
	if req.Kind != toast.KindInfo {
		t.Errorf("Kind = %v, want default info", req.Kind)
	}
	if req.Duration != toast.DefaultDuration {
		t.Errorf("Duration = %v, want default", req.Duration)
	}
}

func TestMountLoadsTasks(t *testing.T) {
	f := newFixture(t, newFakeService(sampleTasks()...))

	f.list.Mount()

	if f.list.Loading() {
		t.Error("Loading should be false after the list call returns")
	}
	if len(f.list.Tasks()) != 2 {
		t.Fatalf("Tasks = %v", f.list.Tasks())
	}
	vtest.ExpectContains(t, f.list.Render(), "Write report")
	vtest.ExpectContains(t, f.list.Render(), "Buy milk")
	if f.host.Active() {
		t.Error("no toast expected on success")
	}
}

func TestLoadingIndicator(t *testing.T) {
	svc := newFakeService(sampleTasks()...)
	var pending func()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	host := toast.NewHost(toast.WithScheduler(toasttest.NewFakeScheduler()), toast.WithLogger(logger))
	defer host.Close()
	list := New(svc, host, syncDispatcher{},
		WithRunner(func(fn func()) { pending = fn }),
		WithLogger(logger),
	)

	list.Mount()
	if !list.Loading() {
		t.Fatal("Loading should be true while the call is in flight")
	}
	vtest.ExpectContains(t, list.Render(), "Loading...")
	vtest.ExpectNotContains(t, list.Render(), "Write report")

	pending()
	vtest.ExpectNotContains(t, list.Render(), "Loading...")
	vtest.ExpectContains(t, list.Render(), "Write report")
}

func TestFailureMessages(t *testing.T) {
	tests := []struct {
		name   string
		failOp string
		act    func(*List)
		want   string
	}{
		{"list", "list", func(l *List) { l.Reload() }, MsgFetchFailed},
		{"add", "create", func(l *List) { l.SetInput("New"); l.Add() }, MsgAddFailed},
		{"complete", "complete", func(l *List) { l.Toggle(1) }, MsgUpdateFailed},
		{"uncomplete", "uncomplete", func(l *List) { l.Toggle(2) }, MsgUpdateFailed},
		{"edit", "update", func(l *List) { l.StartEdit(1, "x"); l.SaveEdit() }, MsgUpdateFailed},
		{"delete", "delete", func(l *List) { l.Delete(1) }, MsgDeleteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, newFakeService(sampleTasks()...))
			f.list.Mount()
			f.svc.fail[tt.failOp] = errAPI

			tt.act(f.list)

			expectToast(t, f.host, tt.want)
			if got := f.list.Tasks(); len(got) != 2 || got[0].Description != "Write report" || got[0].Completed || !got[1].Completed {
				t.Errorf("state changed after a failed call: %v", got)
			}
		})
	}
}

func TestFetchFailureRendersToast(t *testing.T) {
	svc := newFakeService()
	svc.fail["list"] = errors.New("connection refused")
	f := newFixture(t, svc)

	f.list.Mount()

	vtest.ExpectContains(t, f.host.Render(), "Failed to fetch tasks. Please try again later.")
	vtest.ExpectContains(t, f.host.Render(), "Error")
	if f.list.Loading() {
		t.Error("Loading should be cleared after a failure")
	}

	f.sched.Advance(toast.DefaultDuration)
	if f.host.Active() {
		t.Error("toast should expire after the default duration")
	}
}

func TestAddTask(t *testing.T) {
	f := newFixture(t, newFakeService(sampleTasks()...))
	f.list.Mount()

	vtest.Input(t, f.list.Render(), "Add a new task", "Call Alex")
	vtest.Click(t, f.list.Render(), "Add")

	ts := f.list.Tasks()
	if len(ts) != 3 || ts[2].Description != "Call Alex" {
		t.Fatalf("Tasks = %v", ts)
	}
	if f.list.Input() != "" {
		t.Errorf("Input = %q, want cleared", f.list.Input())
	}
}

func TestAddBlankIsIgnored(t *testing.T) {
	f := newFixture(t, newFakeService())
	f.list.Mount()

	f.list.SetInput("   ")
	f.list.Add()

	for _, c := range f.svc.calls {
		if c == "create" {
			t.Fatal("blank input should not call the API")
		}
	}
	if f.list.Input() != "   " {
		t.Errorf("Input = %q, want unchanged", f.list.Input())
	}
}

func TestAddFailureKeepsInput(t *testing.T) {
	f := newFixture(t, newFakeService())
	f.list.Mount()
	f.svc.fail["create"] = errAPI

	f.list.SetInput("Keep me")
	f.list.Add()

	if f.list.Input() != "Keep me" {
		t.Errorf("Input = %q, want kept", f.list.Input())
	}
}

func TestToggleChoosesOperation(t *testing.T) {
	f := newFixture(t, newFakeService(sampleTasks()...))
	f.list.Mount()

	vtest.Change(t, f.list.Render(), "task-1", "on")
	vtest.Change(t, f.list.Render(), "task-2", "")

	calls := f.svc.calls[1:]
	if len(calls) != 2 || calls[0] != "complete" || calls[1] != "uncomplete" {
		t.Fatalf("calls = %v", calls)
	}
	ts := f.list.Tasks()
	if !ts[0].Completed || ts[1].Completed {
		t.Errorf("Tasks = %v", ts)
	}
}

func TestToggleUnknownIsNoop(t *testing.T) {
	f := newFixture(t, newFakeService(sampleTasks()...))
	f.list.Mount()

	f.list.Toggle(42)

	if len(f.svc.calls) != 1 {
		t.Errorf("calls = %v, want only list", f.svc.calls)
	}
}

func TestEditTask(t *testing.T) {
	f := newFixture(t, newFakeService(sampleTasks()...))
	f.list.Mount()

	vtest.Click(t, f.list.Render(), "Edit Write report")
	if id, ok := f.list.Editing(); !ok || id != 1 {
		t.Fatalf("Editing = %d, %v", id, ok)
	}
	vtest.ExpectAttribute(t, f.list.Render(), "value", "Write report")

	vtest.Input(t, f.list.Render(), "edit-1", "Write final report")
	vtest.Click(t, f.list.Render(), "Save")

	if _, ok := f.list.Editing(); ok {
		t.Error("editing should end after a successful save")
	}
	if got := f.list.Tasks()[0].Description; got != "Write final report" {
		t.Errorf("Description = %q", got)
	}
}

func TestEditFailureStaysEditing(t *testing.T) {
	f := newFixture(t, newFakeService(sampleTasks()...))
	f.list.Mount()
	f.svc.fail["update"] = errAPI

	f.list.StartEdit(1, "Write report")
	f.list.SetEditText("changed")
	f.list.SaveEdit()

	if _, ok := f.list.Editing(); !ok {
		t.Error("editing should continue after a failed save")
	}
}

func TestSaveWithoutEditIsNoop(t *testing.T) {
	f := newFixture(t, newFakeService(sampleTasks()...))
	f.list.Mount()

	f.list.SaveEdit()

	if len(f.svc.calls) != 1 {
		t.Errorf("calls = %v", f.svc.calls)
	}
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t, newFakeService(sampleTasks()...))
	f.list.Mount()

	vtest.Click(t, f.list.Render(), "Delete Buy milk")

	ts := f.list.Tasks()
	if len(ts) != 1 || ts[0].ID != 1 {
		t.Errorf("Tasks = %v", ts)
	}
	vtest.ExpectNotContains(t, f.list.Render(), "Buy milk")
}

func TestFilter(t *testing.T) {
	f := newFixture(t, newFakeService(sampleTasks()...))
	f.list.Mount()

	tests := []struct {
		label string
		want  Filter
		shown string
		gone  string
	}{
		{"Completed", FilterCompleted, "Buy milk", "Write report"},
		{"Pending", FilterPending, "Write report", "Buy milk"},
	}
	for _, tt := range tests {
		vtest.Click(t, f.list.Render(), tt.label)
		if f.list.Filter() != tt.want {
			t.Errorf("Filter = %q, want %q", f.list.Filter(), tt.want)
		}
		vtest.ExpectContains(t, f.list.Render(), tt.shown)
		vtest.ExpectNotContains(t, f.list.Render(), tt.gone)
	}

	vtest.Click(t, f.list.Render(), "All")
	if len(f.list.Visible()) != 2 {
		t.Errorf("Visible = %v", f.list.Visible())
	}

	f.list.SetFilter("archived")
	if f.list.Filter() != FilterAll {
		t.Errorf("unknown filter should fall back to all, got %q", f.list.Filter())
	}
}

func TestCanceledContextSkipsToast(t *testing.T) {
	svc := newFakeService()
	svc.fail["list"] = context.Canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	host := toast.NewHost(toast.WithScheduler(toasttest.NewFakeScheduler()), toast.WithLogger(logger))
	defer host.Close()
	list := New(svc, host, syncDispatcher{}, WithRunner(syncRunner), WithContext(ctx), WithLogger(logger))

	list.Mount()

	if host.Active() {
		t.Error("no toast expected once the session context is done")
	}
}

func TestNotifierFromContext(t *testing.T) {
	svc := newFakeService()
	svc.fail["list"] = errAPI
	rec := &recorder{}
	ctx := toast.WithNotifier(context.Background(), rec)

	list := New(svc, nil, syncDispatcher{}, WithRunner(syncRunner), WithContext(ctx),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	list.Mount()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.reqs) != 1 {
		t.Fatalf("got %d notifications, want 1", len(rec.reqs))
	}
	want := toast.Request{Kind: toast.KindInfo, Title: ErrorTitle, Description: MsgFetchFailed}
	if got := rec.reqs[0]; got.Kind != want.Kind || got.Title != want.Title || got.Description != want.Description {
		t.Errorf("notification = %+v, want %+v", got, want)
	}
}

func TestNewWithoutNotifierPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, toast.ErrNoHost) {
			t.Errorf("recover() = %v, want ErrNoHost", r)
		}
	}()
	New(newFakeService(), nil, syncDispatcher{})
}

func TestDefaultRunnerIsAsync(t *testing.T) {
	svc := newFakeService(sampleTasks()...)
	done := make(chan struct{})
	d := dispatchFunc(func(fn func()) {
		fn()
		close(done)
	})
	list := New(svc, &recorder{}, d, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	list.Mount()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("list call never dispatched")
	}
}

type dispatchFunc func(func())

func (f dispatchFunc) Dispatch(fn func()) { f(fn) }

type recorder struct {
	mu   sync.Mutex
	reqs []toast.Request
}

func (r *recorder) Notify(req toast.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}
