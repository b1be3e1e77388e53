package toast

import "time"

// DefaultDuration is how long a notification stays visible when neither the
// request nor the host specify a duration.
const DefaultDuration = 3000 * time.Millisecond

// Kind represents the semantic category of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSuccess, KindError, KindWarning, KindInfo:
		return true
	}
	return false
}

// Icon returns the symbol displayed for a kind. Unknown kinds use the info icon.
func Icon(k Kind) string {
	switch k {
	case KindSuccess:
		return "✔"
	case KindError:
		return "✖"
	case KindWarning:
		return "⚠"
	default:
		return "ℹ"
	}
}

// Request describes a single notification.
type Request struct {
	// Title is an optional short label shown above the message.
	Title string

	// Description is the message body. Required.
	Description string

	// Kind selects icon and styling. Zero value means KindInfo.
	Kind Kind

	// Duration is how long the notification stays visible.
	// Zero or negative means the host default.
	Duration time.Duration

	// OnDismiss runs once when the notification is dismissed by timeout or
	// by the user. It does not run when the request is superseded or the
	// host is closed.
	OnDismiss func()
}

// withDefaults returns a copy of r with Kind and Duration filled in.
func (r Request) withDefaults(def time.Duration) Request {
	if !r.Kind.Valid() {
		r.Kind = KindInfo
	}
	if r.Duration <= 0 {
		r.Duration = def
	}
	if r.Duration <= 0 {
		r.Duration = DefaultDuration
	}
	return r
}
