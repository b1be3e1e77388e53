package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, ev Event) error {
				order = append(order, name+">")
				err := next(ctx, ev)
				order = append(order, "<"+name)
				return err
			}
		}
	}

	h := Chain(func(context.Context, Event) error {
		order = append(order, "handler")
		return nil
	}, mark("a"), nil, mark("b"))

	if err := h(context.Background(), Event{Name: "click"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a> b> handler <b <a"
	if got := strings.Join(order, " "); got != want {
		t.Errorf("order = %q, want %q", got, want)
	}
}

func TestRecover(t *testing.T) {
	h := Chain(func(context.Context, Event) error {
		panic("boom")
	}, Recover())

	err := h(context.Background(), Event{Name: "click"})
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *PanicError", err)
	}
	if pe.Value != "boom" {
		t.Errorf("Value = %v", pe.Value)
	}
	if len(pe.Stack) == 0 {
		t.Error("Stack is empty")
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ok := Chain(func(context.Context, Event) error { return nil }, Logging(logger))
	_ = ok(context.Background(), Event{SessionID: "s1", HID: "h2", Name: "click"})

	fail := Chain(func(context.Context, Event) error { return errors.New("nope") }, Logging(logger))
	_ = fail(context.Background(), Event{SessionID: "s1", HID: "h3", Name: "input"})

	out := buf.String()
	for _, want := range []string{"event handled", "hid=h2", "event handler failed", "error=nope", "session_id=s1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
