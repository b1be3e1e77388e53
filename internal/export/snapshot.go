package export

import (
	"strings"
	"time"

	"github.com/vango-dev/taskboard/pkg/tasks"
)

// Snapshot is the exported document.
type Snapshot struct {
	ExportedAt time.Time    `json:"exported_at"`
	Source     string       `json:"source,omitempty"`
	Total      int          `json:"total"`
	Completed  int          `json:"completed"`
	Tasks      []tasks.Task `json:"tasks"`
}

// NewSnapshot summarises ts.
func NewSnapshot(ts []tasks.Task, source string, at time.Time) Snapshot {
	s := Snapshot{
		ExportedAt: at.UTC(),
		Source:     source,
		Total:      len(ts),
		Tasks:      ts,
	}
	if s.Tasks == nil {
		s.Tasks = []tasks.Task{}
	}
	for _, t := range ts {
		if t.Completed {
			s.Completed++
		}
	}
	return s
}

// ObjectKey names a snapshot taken at t under prefix.
func ObjectKey(prefix string, t time.Time) string {
	name := "tasks-" + t.UTC().Format("20060102T150405Z") + ".json"
	if prefix == "" {
		return name
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + name
}
