package toast

// WithTitle shows a notification with a title and message.
//
//	toast.WithTitle(host, toast.KindError, "Error", "Failed to add task. Please try again.")
func WithTitle(n Notifier, kind Kind, title, message string) {
	n.Notify(Request{Kind: kind, Title: title, Description: message})
}
