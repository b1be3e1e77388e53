// Package tasks is a typed HTTP client for the remote task API.
//
// The API exposes a flat collection of tasks:
//
//	GET    {base}                  list
//	POST   {base}                  create   {"description": "..."}
//	PUT    {base}/{id}/complete    complete
//	PUT    {base}/{id}/uncomplete  uncomplete
//	PATCH  {base}/{id}             update   {"description": "..."}
//	DELETE {base}/{id}             delete
//
// Every call runs inside an OpenTelemetry client span and, when an
// Observer is configured, is reported with its duration and outcome.
package tasks
