// Package todo implements the task list UI.
//
// List talks to a tasks.Service off the session's event loop and applies
// results back on it through a Dispatcher. Failed calls are logged and
// reported to the user with an "Error" toast:
//
//	list := todo.New(client, host, session,
//	    todo.WithContext(session.Context()),
//	    todo.WithLogger(logger),
//	)
package todo
