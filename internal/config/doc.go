// Package config loads taskboard configuration.
//
// Configuration is read from taskboard.json, taskboard.yaml or
// taskboard.yml. Values missing from the file keep their defaults and
// TASKBOARD_* environment variables override both.
//
// # Configuration File Structure
//
//	server:
//	  address: ":8080"
//	  dev: false
//	  max_sessions: 1000
//	api:
//	  base_url: https://todo-list-api-2hsk.onrender.com/tasks
//	  timeout: 10s
//	toast:
//	  duration: 3s
//	session:
//	  max_event_queue: 256
//	  events_per_second: 50
//	  event_burst: 20
//	metrics:
//	  enabled: true
//	  path: /metrics
//	log:
//	  level: info
//	  format: text
//	export:
//	  bucket: my-bucket
//	  prefix: snapshots/
//	  region: eu-west-1
//
// # Usage
//
//	cfg, err := config.Load("taskboard.yaml")
//	if err != nil {
//	    errors.PrintError(err)
//	    os.Exit(1)
//	}
//
// Watch reloads the file when it changes. Only settings that can change
// while the server runs, such as the toast duration, are applied by the
// caller.
package config
