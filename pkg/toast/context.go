package toast

import "context"

type notifierKey struct{}

// WithNotifier returns a copy of ctx carrying n.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierKey{}, n)
}

// From returns the notifier stored on ctx. It returns a *UsageError wrapping
// ErrNoHost when there is none.
func From(ctx context.Context) (Notifier, error) {
	if ctx != nil {
		if n, ok := ctx.Value(notifierKey{}).(Notifier); ok && n != nil {
			if h, isHost := n.(*Host); !isHost || h != nil {
				return n, nil
			}
		}
	}
	return nil, &UsageError{Op: "From", Err: ErrNoHost}
}

// MustFrom is like From but panics when no notifier is in scope.
func MustFrom(ctx context.Context) Notifier {
	n, err := From(ctx)
	if err != nil {
		panic(err)
	}
	return n
}
