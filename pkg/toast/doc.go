// Package toast provides transient feedback notifications for taskboard.
//
// A Host owns a single notification slot. Calling Notify mounts a Center
// that renders an overlay and dismisses itself after the request's duration
// or when the user clicks its close button. A new request supersedes the
// live one: the old Center is torn down and its timer cancelled before the
// new one is shown. There is no queue.
//
// # Lifecycle
//
// A Center has two states, Visible and Dismissed. It is Visible as soon as
// it is activated and schedules exactly one timer. The first of timer
// elapse or manual Dismiss moves it to Dismissed and runs its completion
// callback once. Supersession and Host.Close also move it to Dismissed but
// never run the callback.
//
// # Access
//
// Construct the Host once per UI tree and hand it (or the narrow Notifier
// interface) to whatever needs it:
//
//	host := toast.NewHost(toast.WithScheduler(toast.LoopScheduler{Dispatch: session.Dispatch}))
//	list := todo.New(client, host)
//
// Code that only has a context.Context can look the notifier up:
//
//	ctx = toast.WithNotifier(ctx, host)
//	...
//	toast.MustFrom(ctx).Notify(toast.Request{Description: "Saved"})
//
// Looking up a notifier on a context that never had one is a usage error:
// From returns ErrNoHost and MustFrom panics with a *UsageError.
//
// # Helpers
//
//	toast.WithTitle(host, toast.KindError, "Error", "Failed to add task. Please try again.")
package toast
